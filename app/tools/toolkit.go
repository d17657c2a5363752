package tools

import (
	"fmt"
	"sync"
)

// Toolkit is a mutex-guarded set of tools owned by whoever builds it; there
// is deliberately no package-global registry.
type Toolkit struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

func NewToolkit() *Toolkit {
	return &Toolkit{tools: make(map[string]Tool)}
}

func (tk *Toolkit) Register(tool Tool) error {
	tk.mu.Lock()
	defer tk.mu.Unlock()
	if tool.Name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}
	tk.tools[tool.Name] = tool
	return nil
}

func (tk *Toolkit) Get(name string) (Tool, bool) {
	tk.mu.RLock()
	defer tk.mu.RUnlock()
	tool, ok := tk.tools[name]
	return tool, ok
}

// All returns a copy so callers cannot mutate the toolkit behind the lock.
func (tk *Toolkit) All() map[string]Tool {
	tk.mu.RLock()
	defer tk.mu.RUnlock()
	out := make(map[string]Tool, len(tk.tools))
	for k, v := range tk.tools {
		out[k] = v
	}
	return out
}
