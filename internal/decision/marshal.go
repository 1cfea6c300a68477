package decision

import (
	"io"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v2"

	"github.com/you-not-fish/islec/internal/trie"
	"github.com/you-not-fish/islec/internal/types"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// MarshalTree converts the tree b of rs into nested maps and slices
// suitable for generic encoders.
func MarshalTree(tyenv *types.TypeEnv, termenv *types.TermEnv, rs *trie.RuleSet, b *Block) map[string]interface{} {
	m := marshaler{tyenv: tyenv, termenv: termenv, rs: rs}
	bindings := make([]interface{}, len(rs.Bindings))
	for i := range rs.Bindings {
		bindings[i] = trie.FormatBinding(tyenv, termenv, rs, trie.BindingID(i))
	}
	return map[string]interface{}{
		"term":     tyenv.Name(termenv.Term(rs.Term).Name),
		"bindings": bindings,
		"tree":     m.block(b),
	}
}

// WriteJSON encodes v to w as indented JSON.
func WriteJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteYAML encodes v to w as YAML.
func WriteYAML(w io.Writer, v interface{}) error {
	out, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

type marshaler struct {
	tyenv   *types.TypeEnv
	termenv *types.TermEnv
	rs      *trie.RuleSet
}

func ids(xs []trie.BindingID) []interface{} {
	out := make([]interface{}, len(xs))
	for i, id := range xs {
		if id == NoBinding {
			out[i] = nil
		} else {
			out[i] = id.String()
		}
	}
	return out
}

func (m *marshaler) block(b *Block) []interface{} {
	steps := make([]interface{}, len(b.Steps))
	for i, s := range b.Steps {
		step := map[string]interface{}{}
		if len(s.BindOrder) > 0 {
			step["bind"] = ids(s.BindOrder)
		}
		switch c := s.Check.(type) {
		case *Match:
			arms := make([]interface{}, len(c.Arms))
			for j := range c.Arms {
				arm := &c.Arms[j]
				a := map[string]interface{}{
					"constraint": trie.FormatConstraint(m.tyenv, arm.Constraint),
					"body":       m.block(&arm.Body),
				}
				if len(arm.Bindings) > 0 {
					a["bindings"] = ids(arm.Bindings)
				}
				arms[j] = a
			}
			step["match"] = map[string]interface{}{"source": c.Source.String(), "arms": arms}
		case *Equal:
			step["equal"] = map[string]interface{}{
				"a":    c.A.String(),
				"b":    c.B.String(),
				"body": m.block(&c.Body),
			}
		case *Loop:
			step["loop"] = map[string]interface{}{
				"result": c.Result.String(),
				"body":   m.block(&c.Body),
			}
		case *Return:
			step["return"] = map[string]interface{}{
				"result": c.Result.String(),
				"rule":   int(m.rs.Rules[c.Rule].ID),
				"pos":    c.Pos.String(),
			}
		}
		steps[i] = step
	}
	return steps
}
