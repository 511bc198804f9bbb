// Package registry provides a generic thread-safe registry for values indexed by key.
//
// Registry is designed for read-heavy workloads using sync.RWMutex. It supports
// any comparable key type and any value type through Go generics.
//
// # Basic Usage
//
// Create a registry and register values:
//
//	r := registry.New[string, int]()
//	r.Register("one", 1)
//	r.Register("two", 2)
//
//	value, ok := r.Get("one")
//	if ok {
//	    fmt.Println(value) // Output: 1
//	}
//
// # Tool Catalogs
//
// Registries work well as the backing store for a tool catalog, where
// dispatch looks up an executor by the name the model requested:
//
//	tools := registry.New[string, Tool]()
//	tools.Register("get_data", getDataTool)
//	tools.Register("get_statistics", statsTool)
//
//	// Later, resolve a tool call by name
//	tool, ok := tools.Get(call.Name)
//	if ok {
//	    result, err := tool.Execute(ctx, call.Arguments)
//	    // use result...
//	}
//
// # Lazy Initialization
//
// Use GetOrCreate for thread-safe lazy initialization:
//
//	// One session per conversation
//	sessions := registry.New[string, *Session]()
//
//	// First call creates the session, subsequent calls return the same one
//	session := sessions.GetOrCreate(conversationID, func() *Session {
//	    return NewSession(conversationID)
//	})
//
// GetOrCreate is atomic - the factory function is called at most once per key,
// even under concurrent access.
//
// # Thread Safety
//
// All Registry methods are safe for concurrent use. The Range method iterates
// over a snapshot of the registry, allowing mutations during iteration without
// affecting the iteration itself:
//
//	r.Range(func(key string, value int) bool {
//	    // Safe to call r.Register() or r.Delete() here
//	    if value < 0 {
//	        r.Delete(key) // Won't affect current iteration
//	    }
//	    return true // continue iteration
//	})
package registry
