// Package chunkapi describes the remote chunk generator endpoint shared by
// the viewer's fetcher and the development server.
package chunkapi

import (
	"fmt"
	"net/url"
	"strconv"

	"voxelview/internal/world"
)

// Path is where the generator is mounted.
const Path = "/api/chunk"

// ContentType is the media type of a chunk body.
const ContentType = "application/octet-stream"

// Params is one chunk request. The response body is Size³ block ids in
// x + Size*(y + Size*z) order.
type Params struct {
	Size int
	Seed string
	Base world.BlockType

	CX, CY, CZ int

	SurfaceScale   float64
	CavesScale     float64
	CavesThreshold float64
	GrassDepth     int
	DirtDepth      int
}

// Values encodes p as query parameters.
func (p Params) Values() url.Values {
	v := url.Values{}
	v.Set("size", strconv.Itoa(p.Size))
	v.Set("seed", p.Seed)
	v.Set("base", strconv.Itoa(int(p.Base)))
	v.Set("cx", strconv.Itoa(p.CX))
	v.Set("cy", strconv.Itoa(p.CY))
	v.Set("cz", strconv.Itoa(p.CZ))
	v.Set("surfaceScale", formatFloat(p.SurfaceScale))
	v.Set("cavesScale", formatFloat(p.CavesScale))
	v.Set("cavesThreshold", formatFloat(p.CavesThreshold))
	v.Set("grassDepth", strconv.Itoa(p.GrassDepth))
	v.Set("dirtDepth", strconv.Itoa(p.DirtDepth))
	return v
}

// URL joins endpoint and the encoded parameters. Any query already present
// on endpoint is replaced.
func (p Params) URL(endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("chunk endpoint: %w", err)
	}
	u.RawQuery = p.Values().Encode()
	return u.String(), nil
}

// ParseParams decodes and validates request parameters.
func ParseParams(v url.Values) (Params, error) {
	var p Params
	var err error
	ints := []struct {
		name string
		dst  *int
	}{
		{"size", &p.Size},
		{"cx", &p.CX},
		{"cy", &p.CY},
		{"cz", &p.CZ},
		{"grassDepth", &p.GrassDepth},
		{"dirtDepth", &p.DirtDepth},
	}
	for _, f := range ints {
		if *f.dst, err = strconv.Atoi(v.Get(f.name)); err != nil {
			return p, fmt.Errorf("%s: %w", f.name, err)
		}
	}
	floats := []struct {
		name string
		dst  *float64
	}{
		{"surfaceScale", &p.SurfaceScale},
		{"cavesScale", &p.CavesScale},
		{"cavesThreshold", &p.CavesThreshold},
	}
	for _, f := range floats {
		if *f.dst, err = strconv.ParseFloat(v.Get(f.name), 64); err != nil {
			return p, fmt.Errorf("%s: %w", f.name, err)
		}
	}
	base, err := strconv.Atoi(v.Get("base"))
	if err != nil {
		return p, fmt.Errorf("base: %w", err)
	}
	p.Base = world.BlockType(base)
	p.Seed = v.Get("seed")

	switch {
	case p.Size <= 1 || p.Size > 256:
		return p, fmt.Errorf("size %d out of range", p.Size)
	case base < 0 || base > 255 || !p.Base.Valid():
		return p, fmt.Errorf("base %d is not a block id", base)
	case p.GrassDepth < 0 || p.DirtDepth < 0:
		return p, fmt.Errorf("negative paint depth")
	}
	return p, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
