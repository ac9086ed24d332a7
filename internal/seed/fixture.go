package seed

import (
	"bytes"
	"errors"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	models "agentdeck/internal/domain/models/organization"
)

//go:embed default.yaml
var defaultFixture []byte

// Fixture describes a tree to load. Sibling order is the order in the file.
type Fixture struct {
	Folders []FolderFixture `yaml:"folders"`
	Agents  []AgentFixture  `yaml:"agents"`
}

type FolderFixture struct {
	Name    string          `yaml:"name"`
	Icon    *string         `yaml:"icon,omitempty"`
	Color   *string         `yaml:"color,omitempty"`
	Trashed bool            `yaml:"trashed,omitempty"`
	Folders []FolderFixture `yaml:"folders,omitempty"`
	Agents  []AgentFixture  `yaml:"agents,omitempty"`
}

type AgentFixture struct {
	// ID is a permanent uuid; "none" seeds a name-addressed agent and empty
	// generates one.
	ID         string            `yaml:"id,omitempty"`
	Name       string            `yaml:"name"`
	Visibility models.Visibility `yaml:"visibility,omitempty"`
	Trashed    bool              `yaml:"trashed,omitempty"`
}

// DefaultFixture returns the built-in demo tree
func DefaultFixture() (*Fixture, error) {
	return Parse(bytes.NewReader(defaultFixture))
}

// LoadFile reads a fixture from path
func LoadFile(path string) (*Fixture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixture: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes and validates a YAML fixture
func Parse(r io.Reader) (*Fixture, error) {
	var fixture Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fixture); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	if err := fixture.Validate(); err != nil {
		return nil, fmt.Errorf("invalid fixture: %w", err)
	}
	return &fixture, nil
}

func (f Fixture) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Folders),
		validation.Field(&f.Agents),
	)
}

func (f FolderFixture) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Name, validation.Required, validation.RuneLength(1, 255), validation.By(noSlash)),
		validation.Field(&f.Folders),
		validation.Field(&f.Agents),
	)
}

func (a AgentFixture) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.ID, validation.By(agentID)),
		validation.Field(&a.Name, validation.Required, validation.RuneLength(1, 255)),
		validation.Field(&a.Visibility, validation.In(models.Visibilities...)),
	)
}

func noSlash(value interface{}) error {
	s, _ := value.(string)
	if strings.ContainsRune(s, '/') {
		return fmt.Errorf("must not contain '/'")
	}
	return nil
}

func agentID(value interface{}) error {
	s, _ := value.(string)
	if s == "" || s == "none" {
		return nil
	}
	if _, err := uuid.Parse(s); err != nil {
		return fmt.Errorf("must be a uuid or \"none\"")
	}
	return nil
}

// permanentID resolves the fixture id into the stored one
func (a AgentFixture) permanentID() *uuid.UUID {
	switch a.ID {
	case "none":
		return nil
	case "":
		id := uuid.New()
		return &id
	default:
		id := uuid.MustParse(a.ID)
		return &id
	}
}

func (a AgentFixture) visibility() models.Visibility {
	if a.Visibility == "" {
		return models.VisibilityPrivate
	}
	return a.Visibility
}
