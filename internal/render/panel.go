package render

import (
	"bytes"
	"fmt"
	"html/template"
	"sync"
)

// Container receives freshly rendered markup, replacing whatever it held.
type Container interface {
	Replace(html template.HTML)
}

// Panel is a Container that keeps the latest markup in memory. Listeners
// registered with OnReplace are called after every replacement.
type Panel struct {
	name string

	mu        sync.RWMutex
	html      template.HTML
	version   uint64
	listeners []func(name string, html template.HTML)
}

func NewPanel(name string) *Panel {
	return &Panel{name: name}
}

func (p *Panel) Name() string { return p.name }

func (p *Panel) Replace(html template.HTML) {
	p.mu.Lock()
	p.html = html
	p.version++
	listeners := append([]func(string, template.HTML){}, p.listeners...)
	p.mu.Unlock()

	for _, fn := range listeners {
		fn(p.name, html)
	}
}

func (p *Panel) HTML() template.HTML {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.html
}

// Version counts replacements.
func (p *Panel) Version() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.version
}

func (p *Panel) OnReplace(fn func(name string, html template.HTML)) {
	p.mu.Lock()
	p.listeners = append(p.listeners, fn)
	p.mu.Unlock()
}

func execute(c Container, name string, data any) error {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("error rendering %s: %w", name, err)
	}
	c.Replace(template.HTML(buf.String()))
	return nil
}
