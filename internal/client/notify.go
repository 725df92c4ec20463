package client

// Confirmer asks the user a yes/no question. Stores call it before every
// destructive mutation and only proceed on true; prompting stays fully
// outside the stores so they are testable without a UI.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmerFunc adapts a function to the Confirmer interface.
type ConfirmerFunc func(prompt string) bool

func (f ConfirmerFunc) Confirm(prompt string) bool { return f(prompt) }

// Notifier shows transient status messages.
type Notifier interface {
	Success(msg string)
	Info(msg string)
	Error(msg string)
}

// NopNotifier discards all messages.
type NopNotifier struct{}

func (NopNotifier) Success(string) {}
func (NopNotifier) Info(string)    {}
func (NopNotifier) Error(string)   {}
