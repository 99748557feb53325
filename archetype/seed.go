package archetype

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/brian95240/elite-video-pipeline-v3.0/store"
)

// Seed publishes every archetype profile into the shared state store so
// downstream stage services can resolve treatments without bundling the
// catalog. One hash is written per emotion and intensity under
// emotional_vertices:{emotion}:{intensity}, 36 keys for the v3.0 index.
// Vertex hashes carry no TTL.
func (c *Catalog) Seed(ctx context.Context, st store.StateStore) (int, error) {
	seeded := 0
	for _, emotion := range c.Emotions() {
		a := c.index[emotion]
		for _, intensity := range Intensities() {
			attrs, err := vertexAttrs(a, intensity)
			if err != nil {
				return seeded, fmt.Errorf("pipeline: seed %s:%s: %w", emotion, intensity, err)
			}
			key := store.VertexKey(emotion, string(intensity))
			if err := st.CreateState(ctx, key, attrs, 0); err != nil {
				return seeded, fmt.Errorf("pipeline: seed %s:%s: %w", emotion, intensity, err)
			}
			seeded++
		}
	}
	return seeded, nil
}

func vertexAttrs(a Archetype, intensity Intensity) (map[string]string, error) {
	camera, err := json.Marshal(a.Camera[intensity])
	if err != nil {
		return nil, err
	}
	color, err := json.Marshal(a.Color[intensity])
	if err != nil {
		return nil, err
	}
	vfx, err := json.Marshal(a.VFX[intensity])
	if err != nil {
		return nil, err
	}
	return map[string]string{
		"camera": string(camera),
		"color":  string(color),
		"vfx":    string(vfx),
		"ffmpeg": a.FFmpeg,
	}, nil
}
