package view

import (
	"encoding/json"
	"io"

	"github.com/kluth/wtfis/internal/handler"
)

// JSON renders reports as indented JSON tagged with the entity kind.
type JSON struct {
	w io.Writer
}

func NewJSON(w io.Writer) *JSON {
	return &JSON{w: w}
}

func (j *JSON) VisitDomain(r *handler.DomainReport) error {
	if r == nil {
		return ErrUnsupportedEntity
	}
	return j.encode(struct {
		Kind string `json:"kind"`
		*handler.DomainReport
	}{r.Kind().String(), r})
}

func (j *JSON) VisitIP(r *handler.IPReport) error {
	if r == nil {
		return ErrUnsupportedEntity
	}
	return j.encode(struct {
		Kind string `json:"kind"`
		*handler.IPReport
	}{r.Kind().String(), r})
}

func (j *JSON) encode(v any) error {
	enc := json.NewEncoder(j.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
