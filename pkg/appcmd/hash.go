package appcmd

import (
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// hashCommands returns a deterministic SHA-1 over the stable fields of a set of
// command definitions. IDs and versions are ignored.
func hashCommands(defs []*discordgo.ApplicationCommand) string {
	normalized := make([]map[string]any, len(defs))
	for i, d := range defs {
		normalized[i] = normalizeCommand(d)
	}
	sort.Slice(normalized, func(i, j int) bool {
		ki := fmt.Sprintf("%v/%v", normalized[i]["type"], normalized[i]["name"])
		kj := fmt.Sprintf("%v/%v", normalized[j]["type"], normalized[j]["name"])
		return ki < kj
	})
	data, _ := json.Marshal(normalized)
	sum := sha1.Sum(data)
	return fmt.Sprintf("%x", sum)
}

// HashCommand hashes a single definition.
func HashCommand(def *discordgo.ApplicationCommand) string {
	return hashCommands([]*discordgo.ApplicationCommand{def})
}

func normalizeCommand(c *discordgo.ApplicationCommand) map[string]any {
	obj := map[string]any{
		"name":        c.Name,
		"description": c.Description,
		"type":        c.Type,
	}
	if c.DefaultMemberPermissions != nil {
		obj["default_member_permissions"] = *c.DefaultMemberPermissions
	}
	if c.DMPermission != nil {
		obj["dm_permission"] = *c.DMPermission
	}
	if c.NSFW != nil {
		obj["nsfw"] = *c.NSFW
	}
	if len(c.Options) > 0 {
		obj["options"] = normalizeOptions(c.Options)
	}
	return obj
}

// Option order is significant to Discord (required first), so it is kept.
func normalizeOptions(opts []*discordgo.ApplicationCommandOption) []map[string]any {
	out := make([]map[string]any, len(opts))
	for i, o := range opts {
		entry := map[string]any{
			"name":         o.Name,
			"description":  o.Description,
			"type":         o.Type,
			"required":     o.Required,
			"autocomplete": o.Autocomplete,
		}
		if len(o.Choices) > 0 {
			choices := make([]map[string]any, len(o.Choices))
			for j, ch := range o.Choices {
				choices[j] = map[string]any{"name": ch.Name, "value": ch.Value}
			}
			entry["choices"] = choices
		}
		if len(o.ChannelTypes) > 0 {
			entry["channel_types"] = o.ChannelTypes
		}
		if o.MinValue != nil {
			entry["min_value"] = *o.MinValue
		}
		if o.MaxValue != 0 {
			entry["max_value"] = o.MaxValue
		}
		if o.MinLength != nil {
			entry["min_length"] = *o.MinLength
		}
		if o.MaxLength != 0 {
			entry["max_length"] = o.MaxLength
		}
		if len(o.Options) > 0 {
			entry["options"] = normalizeOptions(o.Options)
		}
		out[i] = entry
	}
	return out
}

// HashCache remembers the last synced hash per scope ("" is global).
type HashCache interface {
	Load(scope string) (string, bool)
	Store(scope, hash string) error
}

type memoryHashCache struct {
	mu     sync.Mutex
	hashes map[string]string
}

// NewMemoryHashCache returns a cache that lives as long as the process.
func NewMemoryHashCache() HashCache {
	return &memoryHashCache{hashes: make(map[string]string)}
}

func (c *memoryHashCache) Load(scope string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.hashes[scope]
	return h, ok
}

func (c *memoryHashCache) Store(scope, hash string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hashes[scope] = hash
	return nil
}

type fileHashCache struct {
	dir string
}

// NewFileHashCache stores one JSON file per scope under dir, so restarts skip
// unchanged syncs.
func NewFileHashCache(dir string) HashCache {
	return &fileHashCache{dir: dir}
}

func (c *fileHashCache) path(scope string) string {
	if scope == "" {
		scope = "global"
	}
	return filepath.Join(c.dir, scope+".json")
}

func (c *fileHashCache) Load(scope string) (string, bool) {
	data, err := os.ReadFile(c.path(scope))
	if err != nil {
		return "", false
	}
	var entry struct {
		Hash string `json:"hash"`
	}
	if err := json.Unmarshal(data, &entry); err != nil || entry.Hash == "" {
		return "", false
	}
	return entry.Hash, true
}

func (c *fileHashCache) Store(scope, hash string) error {
	path := c.path(scope)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(map[string]string{"hash": hash}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
