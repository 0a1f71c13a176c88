package scene

import (
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/df07/go-interactive-raytracer/pkg/core"
)

// View is the camera placement a scene is composed for
type View struct {
	LookFrom    core.Vec3 `json:"lookFrom"`
	LookAt      core.Vec3 `json:"lookAt"`
	FieldOfView float64   `json:"fov"`
}

// SceneInfo describes a catalogue entry
type SceneInfo struct {
	ID          string `json:"id"`          // Unique identifier
	Name        string `json:"name"`        // Scene name
	Description string `json:"description"` // Optional description
	Group       string `json:"group"`       // Grouping category
	Objects     int    `json:"objects"`     // Number of objects the scene is built with
	View        View   `json:"view"`        // Suggested camera
}

// SceneGroup represents a group of related scenes
type SceneGroup struct {
	Name   string      `json:"name"`
	Scenes []SceneInfo `json:"scenes"`
}

// ScenesResponse represents the complete response for /api/scenes
type ScenesResponse struct {
	Groups []SceneGroup `json:"groups"`
}

const builtinGroup = "Built-in Scenes"

type entry struct {
	info  SceneInfo
	build func() *Scene
}

var catalogue = []entry{
	builtin("default", "Spheres and glowing boxes on a ground sphere", "", DefaultView, NewDefaultScene),
	builtin("boxes", "Cornell-style room assembled from boxes", "", BoxesView, NewBoxesScene),
	builtin("sphere-grid", "10x10 grid of rainbow-colored metallic spheres", "Showcase", SphereGridView, NewSphereGridScene),
}

func builtin(id, description, group string, view View, build func() *Scene) entry {
	if group == "" {
		group = builtinGroup
	}
	return entry{
		info: SceneInfo{
			ID:          id,
			Name:        titleCase(id),
			Description: description,
			Group:       group,
			View:        view,
		},
		build: build,
	}
}

// Lookup builds the scene registered under id
func Lookup(id string) (*Scene, SceneInfo, error) {
	for _, e := range catalogue {
		if e.info.ID == id {
			s := e.build()
			info := e.info
			info.Objects = s.Len()
			return s, info, nil
		}
	}
	return nil, SceneInfo{}, errors.Errorf("unknown scene %q", id)
}

// IDs returns the ids of all registered scenes in registration order
func IDs() []string {
	ids := make([]string, 0, len(catalogue))
	for _, e := range catalogue {
		ids = append(ids, e.info.ID)
	}
	return ids
}

// List returns the registered scenes grouped by category
func List() ScenesResponse {
	var response ScenesResponse

	// Group scenes by their Group field
	groupMap := make(map[string][]SceneInfo)
	for _, e := range catalogue {
		groupMap[e.info.Group] = append(groupMap[e.info.Group], e.info)
	}

	// Create ordered groups (Built-in first, then alphabetical)
	var groupNames []string
	for groupName := range groupMap {
		if groupName != builtinGroup {
			groupNames = append(groupNames, groupName)
		}
	}
	sort.Strings(groupNames)

	if builtInScenes, exists := groupMap[builtinGroup]; exists {
		response.Groups = append(response.Groups, SceneGroup{
			Name:   builtinGroup,
			Scenes: builtInScenes,
		})
	}

	for _, groupName := range groupNames {
		response.Groups = append(response.Groups, SceneGroup{
			Name:   groupName,
			Scenes: groupMap[groupName],
		})
	}

	return response
}

// titleCase converts an id-style string to title case
// e.g., "sphere-grid" -> "Sphere Grid"
func titleCase(s string) string {
	// Replace hyphens and underscores with spaces
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	// Title case each word
	words := strings.Fields(s)
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
		}
	}

	return strings.Join(words, " ")
}
