package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/phnet/internal/sim"
)

type ExportData struct {
	Graph    string       `json:"graph"`
	Vertices []string     `json:"vertices"`
	Results  []*sim.Result `json:"results"`
}

// ExportJSON writes one or more results as indented JSON.
func ExportJSON(w io.Writer, info RunInfo, results ...*sim.Result) error {
	data := ExportData{
		Graph:    info.Graph,
		Vertices: info.Vertices,
		Results:  results,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
