package event

// Unregisterer severs one subscription.
type Unregisterer interface {
	Unregister()
}

// Token is an Unregisterer backed by a func. The func runs on the first
// Unregister call only; later calls are no-ops.
type Token struct {
	onUnregister func()
}

// NewToken creates a token that runs fn when unregistered.
func NewToken(fn func()) *Token {
	return &Token{onUnregister: fn}
}

// Unregister runs the wrapped func once and drops the reference to it.
func (t *Token) Unregister() {
	if t == nil || t.onUnregister == nil {
		return
	}
	fn := t.onUnregister
	t.onUnregister = nil
	fn()
}

// Group collects tokens so an owner can sever all of its subscriptions at once.
// The zero value is ready to use.
type Group struct {
	tokens []Unregisterer
}

// Add records u and returns it for chaining at the registration site.
func (g *Group) Add(u Unregisterer) Unregisterer {
	if u != nil {
		g.tokens = append(g.tokens, u)
	}
	return u
}

// Len returns the number of tokens still held.
func (g *Group) Len() int {
	return len(g.tokens)
}

// UnregisterAll unregisters every collected token in reverse order and empties the group.
func (g *Group) UnregisterAll() {
	tokens := g.tokens
	g.tokens = nil
	for i := len(tokens) - 1; i >= 0; i-- {
		tokens[i].Unregister()
	}
}
