package model

// Decorator adjusts a loaded form definition before it is validated and
// rendered, for example to add a placeholder or tighten a message. It works
// on a copy, so the bundled definition is never changed.
type Decorator interface {
	Decorate(*FormModel) error
}

// DecoratorFunc adapts a function into a Decorator.
type DecoratorFunc func(*FormModel) error

// Decorate calls the underlying function.
func (fn DecoratorFunc) Decorate(form *FormModel) error {
	return fn(form)
}
