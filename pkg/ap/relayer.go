package ap

import "github.com/distributed-affinity/pkg/graph"

// dampedRelayer adapts the engine's message channel to the factors' Sender
// interface and applies exponential damping against the value last sent to
// the same recipient. The damped value, not the raw one, is what gets
// recorded, so oscillations decay geometrically across rounds.
type dampedRelayer struct {
	g       *Graph
	damping float64
	last    *graph.MessageMap
}

func (r *dampedRelayer) Send(value float64, sender, recipient graph.VertexID) {
	if prev, ok := r.last.Get(recipient); ok {
		value = r.damping*prev + (1-r.damping)*value
	}
	r.g.SendMessage(recipient, graph.Message{From: sender, Value: value})
	r.last.Put(recipient, value)
}
