package protocol

// Disposer detaches a previously registered listener. Calling it more than
// once must be a no-op.
type Disposer func()

// Connection is the adapter's view of the transport-level protocol client.
// Requests are fire-and-forget: they return immediately and the eventual
// reply arrives through the matching On* subscription, keyed by response
// kind rather than request identity. There is no cancellation; callers must
// tolerate replies arriving out of issue order.
type Connection interface {
	// SendChange forwards a raw document-changed notification.
	SendChange()

	// Requests. Each eventually produces one event on the corresponding
	// subscription (or none, if the server never answers).
	RequestHover(pos Position)
	RequestCompletion(pos Position, token string, triggerChar string, kind CompletionTriggerKind)
	RequestSignatureHelp(pos Position)
	RequestDefinition(pos Position)
	RequestTypeDefinition(pos Position)
	RequestReferences(pos Position)

	// Capability queries, answered from the negotiated server capabilities.
	DefinitionSupported() bool
	TypeDefinitionSupported() bool
	ReferencesSupported() bool
	CompletionCharacters() []string
	SignatureCharacters() []string

	// DocumentURI returns the URI of the currently open document.
	DocumentURI() string

	// Response subscriptions. Handlers run on the connection's event
	// callback; each registration returns its own disposer.
	OnHover(fn func(Hover)) Disposer
	OnCompletion(fn func(CompletionList)) Disposer
	OnSignature(fn func(*SignatureHelp)) Disposer
	OnGoTo(fn func(GoToKind, []Location)) Disposer
	OnDiagnostics(fn func([]Diagnostic)) Disposer
}
