package rows

import (
	"bytes"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Student is the identity block printed on the first page
type Student struct {
	Name   string `yaml:"name"`
	ID     string `yaml:"id"`
	Class  string `yaml:"class"`
	Term   string `yaml:"term"`
	School string `yaml:"school"`
}

// Attendance holds precomputed attendance totals
type Attendance struct {
	Sick    int `yaml:"sick"`
	Permit  int `yaml:"permit"`
	Absent  int `yaml:"absent"`
	Present int `yaml:"present"`
}

// Signatory is one name in the signature block
type Signatory struct {
	Role string `yaml:"role"`
	Name string `yaml:"name"`
	Date string `yaml:"date,omitempty"`
}

// Document is a report as delivered by the content layer
type Document struct {
	Title       string      `yaml:"title"`
	Logo        string      `yaml:"logo,omitempty"`
	Student     Student     `yaml:"student"`
	Rows        []Row       `yaml:"rows"`
	Attendance  *Attendance `yaml:"attendance,omitempty"`
	Signatories []Signatory `yaml:"signatories,omitempty"`
}

// DecodeDocument reads a YAML or JSON report document
func DecodeDocument(r io.Reader) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return &doc, nil
		}
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return &doc, nil
}

// ParseDocument decodes a document from bytes
func ParseDocument(data []byte) (*Document, error) {
	return DecodeDocument(bytes.NewReader(data))
}
