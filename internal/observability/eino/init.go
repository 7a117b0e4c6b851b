// Package eino 注册 eino 全局回调，上报 LLM 调用指标、追踪与用量
package eino

import (
	"sync"

	einocallbacks "github.com/cloudwego/eino/callbacks"
	cbtemplate "github.com/cloudwego/eino/utils/callbacks"

	"linkedin-post-ai-api/internal/domain/service"
)

var initOnce sync.Once

// Init 注册 Eino 全局 callbacks（进程级一次）。usageRecorder 可为 nil。
func Init(usageRecorder service.LLMUsageRecorder) {
	initOnce.Do(func() {
		handler := cbtemplate.NewHandlerHelper().
			ChatModel(newChatModelCallbackHandler(usageRecorder)).
			Handler()
		einocallbacks.AppendGlobalHandlers(handler)
	})
}
