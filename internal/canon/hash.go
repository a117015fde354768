package canon

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/marlang/marlang/internal/lang"
)

// Domain prefixes; the version suffix allows migrating the encoding.
const (
	DomainTerm    = "marlang/term/v1"
	DomainRuleSet = "marlang/ruleset/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// TermValue converts t into a nested canonical value. Symbols become
// {"sym": text}; every other node {"op": tag, "args": [...]}, with args
// omitted for leaves.
func TermValue(t *lang.Term) any {
	var walk func(lang.Id) any
	walk = func(id lang.Id) any {
		n := t.Node(id)
		if n.Op == lang.OpSymbol {
			return map[string]any{"sym": n.Symbol}
		}
		obj := map[string]any{"op": n.Op.Tag()}
		if kids := n.Children(); len(kids) > 0 {
			args := make([]any, len(kids))
			for i, c := range kids {
				args[i] = walk(c)
			}
			obj["args"] = args
		}
		return obj
	}
	return walk(t.Root())
}

// TermID is the content id of a non-empty term.
func TermID(t *lang.Term) (string, error) {
	if t.Len() == 0 {
		return "", fmt.Errorf("term id: empty term")
	}
	data, err := Marshal(TermValue(t))
	if err != nil {
		return "", fmt.Errorf("term id: %w", err)
	}
	return hashWithDomain(DomainTerm, data), nil
}

// MustTermID is like TermID but panics on error.
func MustTermID(t *lang.Term) string {
	id, err := TermID(t)
	if err != nil {
		panic(err)
	}
	return id
}

// RuleSetID identifies a rule set by its ordered (name, lhs, rhs) triples.
func RuleSetID(rules [][3]string) (string, error) {
	arr := make([]any, len(rules))
	for i, r := range rules {
		arr[i] = map[string]any{"name": r[0], "lhs": r[1], "rhs": r[2]}
	}
	data, err := Marshal(arr)
	if err != nil {
		return "", fmt.Errorf("rule set id: %w", err)
	}
	return hashWithDomain(DomainRuleSet, data), nil
}
