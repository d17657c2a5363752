package clients

import (
	"github.com/JeremyDillmann/task-bot-ai/app/runtime"
)

// Interface is implemented by every chat transport. Subscribe wires the
// connector to the runtime and starts listening.
type Interface interface {
	Subscribe(*runtime.Runtime)
}

type Client struct {
	runtime *runtime.Runtime
}
