package ussd

import (
	"fmt"
	"slices"

	"github.com/afritokeni/ussd-engine/internal/model"
)

// machine is the transition table of a multi-step flow. Steps are stored on
// the session as plain ints; S names them.
type machine[S ~int] struct {
	name  string
	edges map[S][]S
}

func newMachine[S ~int](name string, edges map[S][]S) machine[S] {
	return machine[S]{name: name, edges: edges}
}

func (m machine[S]) at(sess *model.Session) S {
	return S(sess.Step)
}

func (m machine[S]) allowed(from, to S) bool {
	return slices.Contains(m.edges[from], to)
}

// move advances sess to step to, refusing transitions the table lacks.
func (m machine[S]) move(sess *model.Session, to S) error {
	from := S(sess.Step)
	if !m.allowed(from, to) {
		return fmt.Errorf("%s: illegal transition %d -> %d", m.name, from, to)
	}
	sess.Step = int(to)
	return nil
}

func (m machine[S]) unknown(sess *model.Session) error {
	return fmt.Errorf("%s: unknown step %d", m.name, sess.Step)
}
