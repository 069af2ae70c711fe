// Package operations provides the typed operation descriptors executed
// through the framework: filesystem, process, and network actions.
//
// Constructors stamp a unique ID and UTC creation timestamp, and every
// operation declares the permissions it requires, so security middleware
// can authorize it without knowing the concrete type.
package operations

import (
	"time"

	"github.com/google/uuid"

	"github.com/airsstack/airssys-osl/pkg/osl"
)

// meta carries the identity fields shared by all operations.
type meta struct {
	id        string
	createdAt time.Time
}

func newMeta() meta {
	return meta{id: uuid.NewString(), createdAt: time.Now().UTC()}
}

func (m meta) ID() string           { return m.id }
func (m meta) CreatedAt() time.Time { return m.createdAt }

// WithID overrides the stamped operation ID. Intended for callers that
// correlate operations with an external request ID.
func (m *meta) setID(id string) {
	if id != "" {
		m.id = id
	}
}

// WithCreatedAt overrides the stamped timestamp. Intended for tests.
func (m *meta) setCreatedAt(t time.Time) {
	if !t.IsZero() {
		m.createdAt = t
	}
}

var (
	_ osl.Operation = (*FileRead)(nil)
	_ osl.Operation = (*FileWrite)(nil)
	_ osl.Operation = (*FileDelete)(nil)
	_ osl.Operation = (*DirCreate)(nil)
	_ osl.Operation = (*DirList)(nil)
	_ osl.Operation = (*ProcessSpawn)(nil)
	_ osl.Operation = (*ProcessKill)(nil)
	_ osl.Operation = (*ProcessSignal)(nil)
	_ osl.Operation = (*NetworkConnect)(nil)
	_ osl.Operation = (*NetworkListen)(nil)
	_ osl.Operation = (*NetworkSocket)(nil)
)
