// Package vc projects trusted JWT claims onto the verifiable credential
// envelope: subject, issuer, types, context and the credential subject
// attributes.
package vc

import (
	"fmt"
	"sort"

	"vcproof/internal/credential/claims"
	"vcproof/internal/credential/token"
	dErrors "vcproof/pkg/domain-errors"
)

// View is the typed, read-only projection of a verified credential.
type View struct {
	subject    string
	issuer     string
	types      []string
	context    []string
	attributes map[string]claims.Value
}

// NewView builds a view directly. It is meant for callers that already hold
// trusted data, such as tests and matchers working on fixtures.
func NewView(subject, issuer string, types, context []string, attributes map[string]claims.Value) View {
	attrs := make(map[string]claims.Value, len(attributes))
	for k, v := range attributes {
		attrs[k] = v
	}
	return View{
		subject:    subject,
		issuer:     issuer,
		types:      append([]string(nil), types...),
		context:    append([]string(nil), context...),
		attributes: attrs,
	}
}

func (v View) Subject() string { return v.subject }
func (v View) Issuer() string  { return v.issuer }

// Types returns the credential type tags in credential order.
func (v View) Types() []string { return append([]string(nil), v.types...) }

// Context returns the @context entries in credential order.
func (v View) Context() []string { return append([]string(nil), v.context...) }

// Attribute returns a credentialSubject member.
func (v View) Attribute(name string) (claims.Value, bool) {
	val, ok := v.attributes[name]
	return val, ok
}

// AttributeNames returns the credentialSubject member names, sorted.
func (v View) AttributeNames() []string {
	names := make([]string, 0, len(v.attributes))
	for name := range v.attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasType reports whether the credential declares the given type tag.
func (v View) HasType(t string) bool {
	for _, have := range v.types {
		if have == t {
			return true
		}
	}
	return false
}

// Extract projects verified claims onto a View.
//
// Required: sub (non-empty string), iss (string) and vc.credentialSubject
// (object). vc.type and vc.@context are optional; when present they must be
// a string or an array of strings.
//
// Errors: CodeMalformedCredential when the envelope does not have that shape.
// The signature has already been checked at this point, so this is a content
// check only.
func Extract(t *token.TrustedClaims) (View, error) {
	if t == nil {
		return View{}, malformed("credential claims are missing")
	}

	subject, err := requiredString(t, "sub")
	if err != nil {
		return View{}, err
	}
	if subject == "" {
		return View{}, malformed("sub claim is empty")
	}
	issuer, err := requiredString(t, "iss")
	if err != nil {
		return View{}, err
	}

	rawVC, ok := t.Lookup("vc")
	if !ok {
		return View{}, malformed("vc claim is missing")
	}
	envelope, ok := rawVC.(map[string]any)
	if !ok {
		return View{}, malformed("vc claim is not an object")
	}

	rawSubject, ok := envelope["credentialSubject"]
	if !ok {
		return View{}, malformed("vc.credentialSubject is missing")
	}
	members, ok := rawSubject.(map[string]any)
	if !ok {
		return View{}, malformed("vc.credentialSubject is not an object")
	}

	names := make([]string, 0, len(members))
	for name := range members {
		names = append(names, name)
	}
	sort.Strings(names)

	attributes := make(map[string]claims.Value, len(members))
	for _, name := range names {
		val, err := claims.FromJSON(members[name])
		if err != nil {
			return View{}, dErrors.Wrap(err, dErrors.CodeMalformedCredential,
				fmt.Sprintf("vc.credentialSubject.%s is not a json value", name))
		}
		attributes[name] = val
	}

	types, err := optionalStrings(envelope, "type")
	if err != nil {
		return View{}, err
	}
	context, err := optionalStrings(envelope, "@context")
	if err != nil {
		return View{}, err
	}

	return View{
		subject:    subject,
		issuer:     issuer,
		types:      types,
		context:    context,
		attributes: attributes,
	}, nil
}

func requiredString(t *token.TrustedClaims, name string) (string, error) {
	raw, ok := t.Lookup(name)
	if !ok {
		return "", malformed(name + " claim is missing")
	}
	s, ok := raw.(string)
	if !ok {
		return "", malformed(name + " claim is not a string")
	}
	return s, nil
}

func optionalStrings(envelope map[string]any, name string) ([]string, error) {
	raw, ok := envelope[name]
	if !ok || raw == nil {
		return nil, nil
	}
	switch t := raw.(type) {
	case string:
		return []string{t}, nil
	case []any:
		out := make([]string, 0, len(t))
		for i, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, malformed(fmt.Sprintf("vc.%s[%d] is not a string", name, i))
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, malformed("vc." + name + " must be a string or an array of strings")
	}
}

func malformed(msg string) error {
	return dErrors.New(dErrors.CodeMalformedCredential, msg)
}
