package baking

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spaghettifunk/lume/engine/containers"
	"github.com/spaghettifunk/lume/engine/core"
	"github.com/spaghettifunk/lume/engine/scene"
)

// BakeQueue bakes a set of scene nodes one after another. Each node
// gets a temporary Lightmap component which is detached again once the
// capture completes, so only one offscreen rig exists at any time.
type BakeQueue struct {
	hosts      Hosts
	pending    *containers.RingQueue[*scene.Node]
	outputPath string
	imageSize  uint32

	active          *Lightmap
	activeNode      *scene.Node
	activeTechnique string
	startedAt       time.Time

	catalog *Catalog
	doneSub *core.EventSubscription
}

// NewBakeQueue returns a queue holding at most capacity pending nodes.
// Captures render imageSize squared; zero picks the default size.
func NewBakeQueue(hosts Hosts, capacity int, outputPath string, imageSize uint32) *BakeQueue {
	if imageSize == 0 {
		imageSize = DefaultTextureSize
	}
	q := &BakeQueue{
		hosts:      hosts,
		pending:    containers.NewRingQueue[*scene.Node](capacity),
		outputPath: outputPath,
		imageSize:  imageSize,
	}
	q.doneSub = hosts.Events.Register(EVENT_CODE_LIGHTMAP_DONE, q.onLightmapDone)
	return q
}

// SetCatalog makes the queue record every finished bake. The queue
// does not own the catalog; close it separately.
func (q *BakeQueue) SetCatalog(catalog *Catalog) {
	q.catalog = catalog
}

// Enqueue adds a node to the queue and starts baking right away if
// nothing else is in flight.
func (q *BakeQueue) Enqueue(node *scene.Node) error {
	if node == nil {
		return fmt.Errorf("cannot enqueue a nil node")
	}
	if err := q.pending.Enqueue(node); err != nil {
		return fmt.Errorf("bake queue is full: %w", err)
	}
	if q.active == nil {
		q.beginNext()
	}
	return nil
}

// Drained reports whether the queue has no pending and no in-flight
// bakes left.
func (q *BakeQueue) Drained() bool {
	return q.active == nil && q.pending.IsEmpty()
}

// Pending returns the number of nodes waiting behind the active bake.
func (q *BakeQueue) Pending() int {
	return q.pending.Len()
}

// Shutdown cancels the in-flight bake and drops all pending nodes.
func (q *BakeQueue) Shutdown() {
	if q.doneSub != nil {
		q.hosts.Events.Unregister(q.doneSub)
		q.doneSub = nil
	}
	if q.active != nil {
		q.activeNode.RemoveComponent(q.active)
		q.active = nil
		q.activeNode = nil
	}
	for !q.pending.IsEmpty() {
		if _, err := q.pending.Dequeue(); err != nil {
			break
		}
	}
}

func (q *BakeQueue) beginNext() {
	for q.active == nil {
		node, err := q.pending.Dequeue()
		if err != nil {
			return
		}

		mesh, ok := scene.GetComponent[*scene.StaticMesh](node)
		if !ok || mesh.Geometry() == nil || mesh.GetMaterial() == nil {
			core.LogWarn("bake queue skipped node %d (%s): nothing renderable", node.ID(), node.Name())
			continue
		}

		lightmap := NewLightmap(q.hosts)
		node.AddComponent(lightmap)

		q.activeTechnique = TechniqueNameFor(mesh.GetMaterial())
		q.startedAt = time.Now()

		if err := lightmap.BakeTexture(q.outputPath, q.imageSize); err != nil {
			core.LogError("bake queue could not start node %d (%s): %s", node.ID(), node.Name(), err.Error())
			node.RemoveComponent(lightmap)
			continue
		}

		q.active = lightmap
		q.activeNode = node
	}
}

func (q *BakeQueue) onLightmapDone(context core.EventContext) {
	node, ok := context.Data.(*scene.Node)
	if !ok || node != q.activeNode {
		// Someone else's bake.
		return
	}

	if q.catalog != nil {
		record := &BakeRecord{
			NodeID:    node.ID(),
			NodeName:  node.Name(),
			File:      filepath.Join(q.outputPath, fmt.Sprintf("node%d_bake.png", node.ID())),
			Width:     q.imageSize,
			Height:    q.imageSize,
			Technique: q.activeTechnique,
			Duration:  time.Since(q.startedAt),
		}
		if err := q.catalog.Record(record); err != nil {
			core.LogError("bake queue could not record node %d: %s", node.ID(), err.Error())
		}
	}

	node.RemoveComponent(q.active)
	q.active = nil
	q.activeNode = nil

	core.LogInfo("bake queue finished node %d (%s), %d pending", node.ID(), node.Name(), q.pending.Len())

	q.beginNext()
}
