package core

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/signalsfoundry/constellation-partitioner/kb"
	"github.com/signalsfoundry/constellation-partitioner/model"
)

// ConstellationScenario is a small summary of what was loaded from JSON.
type ConstellationScenario struct {
	NodeIDs []model.NodeID
	Links   int

	// LinkModel is non-nil when the file carried an explicit link list.
	LinkModel *StaticLinkModel

	// TLEs holds line pairs for nodes that should move under SGP4.
	TLEs map[model.NodeID][2]string
}

type scenarioJSON struct {
	Nodes []nodeJSON `json:"nodes"`
	Links []linkJSON `json:"links"`
}

type nodeJSON struct {
	ID             int     `json:"id"`
	Name           string  `json:"name"`
	LatitudeDeg    float64 `json:"lat"`
	LongitudeDeg   float64 `json:"lon"`
	AltitudeKm     float64 `json:"alt_km"`
	InclinationDeg float64 `json:"inclination"`
	TLE1           string  `json:"tle1"`
	TLE2           string  `json:"tle2"`
}

type linkJSON struct {
	A          int     `json:"a"`
	B          int     `json:"b"`
	DistanceKm float64 `json:"distance_km"`
	Direction  string  `json:"direction"` // "" | "both" | "forward"
}

// LoadConstellationScenario reads a JSON scenario from r and registers its
// nodes in store.
//
// Links must reference nodes from the same file. Pairs without a distance
// use the slant distance between the two node positions.
func LoadConstellationScenario(store *kb.KnowledgeBase, r io.Reader) (*ConstellationScenario, error) {
	if store == nil {
		return nil, fmt.Errorf("LoadConstellationScenario: store is nil")
	}

	var payload scenarioJSON
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("LoadConstellationScenario: decode failed: %w", err)
	}

	result := &ConstellationScenario{
		NodeIDs: make([]model.NodeID, 0, len(payload.Nodes)),
		TLEs:    make(map[model.NodeID][2]string),
	}

	positions := make(map[model.NodeID]model.Geodetic, len(payload.Nodes))
	for _, js := range payload.Nodes {
		if js.ID < 0 {
			return nil, fmt.Errorf("LoadConstellationScenario: node with negative id %d", js.ID)
		}
		id := model.NodeID(js.ID)
		name := js.Name
		if name == "" {
			name = fmt.Sprintf("sat-%d", js.ID)
		}
		n := &model.Node{
			ID:             id,
			Name:           name,
			InclinationDeg: js.InclinationDeg,
			Position: model.Geodetic{
				LatitudeDeg:  js.LatitudeDeg,
				LongitudeDeg: js.LongitudeDeg,
				AltitudeKm:   js.AltitudeKm,
			},
		}
		if err := store.AddNode(n); err != nil {
			return nil, fmt.Errorf("LoadConstellationScenario: %w", err)
		}
		positions[id] = n.Position
		if js.TLE1 != "" && js.TLE2 != "" {
			result.TLEs[id] = [2]string{js.TLE1, js.TLE2}
		}
		result.NodeIDs = append(result.NodeIDs, id)
	}

	if len(payload.Links) == 0 {
		return result, nil
	}

	links := NewStaticLinkModel()
	for i, js := range payload.Links {
		a, b := model.NodeID(js.A), model.NodeID(js.B)
		pa, okA := positions[a]
		pb, okB := positions[b]
		if !okA || !okB {
			return nil, fmt.Errorf("LoadConstellationScenario: link %d: %w: %d-%d", i, model.ErrNodeNotFound, js.A, js.B)
		}
		if a == b {
			return nil, fmt.Errorf("LoadConstellationScenario: link %d is a self-loop on %d", i, js.A)
		}
		d := js.DistanceKm
		if d <= 0 {
			d = SlantDistanceKm(pa, pb)
		}
		switch strings.ToLower(strings.TrimSpace(js.Direction)) {
		case "", "both":
			links.Connect(a, b, d)
		case "forward":
			links.ConnectDirected(a, b, d)
		default:
			return nil, fmt.Errorf("LoadConstellationScenario: link %d: unknown direction %q", i, js.Direction)
		}
		result.Links++
	}
	result.LinkModel = links
	return result, nil
}
