package google

import (
	"fmt"
	"sync"
)

// HeadlessProvider satisfies Provider for environments without a browser
// runtime. There is no prompt and no button; credentials arrive out of band
// through Submit, typically from an environment variable or a file.
type HeadlessProvider struct {
	mu       sync.Mutex
	callback func(string)
}

func NewHeadlessProvider() *HeadlessProvider {
	return &HeadlessProvider{}
}

func (p *HeadlessProvider) Initialize(_ string, callback func(string)) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.callback = callback
	return nil
}

// Prompt resolves not-displayed; there is nothing to show.
func (p *HeadlessProvider) Prompt(completed func(bool)) error {
	completed(false)
	return nil
}

func (p *HeadlessProvider) RenderButton(mount string, _ ButtonOptions) error {
	return fmt.Errorf("no display available for mount %q", mount)
}

func (p *HeadlessProvider) DisableAutoSelect() {}

// Submit feeds a credential to the registered callback.
func (p *HeadlessProvider) Submit(credential string) error {
	p.mu.Lock()
	callback := p.callback
	p.mu.Unlock()

	if callback == nil {
		return fmt.Errorf("provider not initialized")
	}
	callback(credential)
	return nil
}
