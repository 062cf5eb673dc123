package auth

// Principal is the identity established for a single request after
// successful authentication. It is never persisted and cannot be mutated
// once constructed.
type Principal struct {
	subject string
	roles   []string
}

// NewPrincipal creates a Principal for subject with an optional role set.
func NewPrincipal(subject string, roles ...string) *Principal {
	return &Principal{
		subject: subject,
		roles:   append([]string(nil), roles...),
	}
}

// Subject returns the subject identifier (the account username).
func (p *Principal) Subject() string {
	return p.subject
}

// Roles returns a copy of the principal's roles.
func (p *Principal) Roles() []string {
	return append([]string(nil), p.roles...)
}
