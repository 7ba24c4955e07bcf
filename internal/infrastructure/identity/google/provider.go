package google

// ButtonOptions controls the rendered sign-in button.
type ButtonOptions struct {
	Theme string
	Size  string
	Text  string
}

// Provider abstracts the Google Identity Services surface: one-tap prompts,
// rendered buttons and incoming signed credentials. Implementations hand the
// raw credential string to the callback registered with Initialize.
type Provider interface {
	// Initialize binds the OAuth client id and the credential callback.
	// It must be called before Prompt or RenderButton.
	Initialize(clientID string, callback func(credential string)) error

	// Prompt asks the provider to show its sign-in prompt. completed
	// reports whether the prompt was displayed; a dismissed or skipped
	// prompt resolves false without an error.
	Prompt(completed func(displayed bool)) error

	// RenderButton mounts a sign-in button on the named mount point.
	// It fails while the mount point does not exist yet.
	RenderButton(mount string, opts ButtonOptions) error

	// DisableAutoSelect stops the provider from silently restoring the
	// previous account on the next visit. Called on sign-out.
	DisableAutoSelect()
}
