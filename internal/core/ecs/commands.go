package ecs

import (
	"sort"

	"go.uber.org/multierr"
)

type commandKind uint8

const (
	cmdSpawn commandKind = iota
	cmdDespawn
	cmdInsert
	cmdRemove
)

type command struct {
	kind   commandKind
	entity Entity
	name   string
	data   Instance
	bundle map[string]Instance
}

// Commands records structural changes while query iteration has the world
// locked down, then replays them in recorded order once Flush is called.
// Recorded data is cloned, so the caller may reuse its maps afterwards.
type Commands struct {
	world *World
	queue []command
}

func NewCommands(w *World) *Commands { return &Commands{world: w} }

// Spawn queues a new entity carrying the given components. Bundle components
// are applied sorted by name so replay stays deterministic.
func (c *Commands) Spawn(components map[string]Instance) {
	var bundle map[string]Instance
	if len(components) > 0 {
		bundle = make(map[string]Instance, len(components))
		for name, data := range components {
			bundle[name] = CloneInstance(data)
		}
	}
	c.queue = append(c.queue, command{kind: cmdSpawn, bundle: bundle})
}

func (c *Commands) Despawn(e Entity) {
	c.queue = append(c.queue, command{kind: cmdDespawn, entity: e})
}

func (c *Commands) Insert(e Entity, name string, data Instance) {
	c.queue = append(c.queue, command{kind: cmdInsert, entity: e, name: name, data: CloneInstance(data)})
}

func (c *Commands) Remove(e Entity, name string) {
	c.queue = append(c.queue, command{kind: cmdRemove, entity: e, name: name})
}

// Len reports how many commands are pending.
func (c *Commands) Len() int { return len(c.queue) }

// Flush applies the queue in order against the world and drains it. Failures
// do not stop the replay; every error is collected and returned joined, each
// one attributable to its command. Flushing during iteration fails without
// draining, so nothing recorded is lost.
func (c *Commands) Flush() error {
	if err := c.world.guard("flush"); err != nil {
		return err
	}
	var errs error
	for i := range c.queue {
		cmd := &c.queue[i]
		switch cmd.kind {
		case cmdSpawn:
			e, err := c.world.Spawn()
			if err != nil {
				errs = multierr.Append(errs, err)
				continue
			}
			for _, name := range sortedNames(cmd.bundle) {
				if err := c.world.Insert(e, name, cmd.bundle[name]); err != nil {
					errs = multierr.Append(errs, err)
				}
			}
		case cmdDespawn:
			if err := c.world.Despawn(cmd.entity); err != nil {
				errs = multierr.Append(errs, err)
			}
		case cmdInsert:
			if err := c.world.Insert(cmd.entity, cmd.name, cmd.data); err != nil {
				errs = multierr.Append(errs, err)
			}
		case cmdRemove:
			if err := c.world.Remove(cmd.entity, cmd.name); err != nil {
				errs = multierr.Append(errs, err)
			}
		}
	}
	c.queue = c.queue[:0]
	return errs
}

func sortedNames(bundle map[string]Instance) []string {
	names := make([]string, 0, len(bundle))
	for name := range bundle {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
