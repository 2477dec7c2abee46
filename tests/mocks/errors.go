package mocks

import "sync"

// failures holds errors injected per method name.
type failures struct {
	mu   sync.Mutex
	errs map[string]error
}

// set makes the next calls of method fail with err until cleared with nil.
func (f *failures) set(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.errs == nil {
		f.errs = make(map[string]error)
	}
	if err == nil {
		delete(f.errs, method)
		return
	}
	f.errs[method] = err
}

func (f *failures) get(method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errs[method]
}
