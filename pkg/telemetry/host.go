package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/reactor/pkg/vdom"
)

// CountingHost forwards to a vdom.Host and counts mutating operations.
// Reads (ParentOf, NextSibling) are not counted.
type CountingHost struct {
	vdom.Host
	create  prometheus.Counter
	text    prometheus.Counter
	comment prometheus.Counter
	insert  prometheus.Counter
	remove  prometheus.Counter
	setText prometheus.Counter
	setAttr prometheus.Counter
	rmAttr  prometheus.Counter
}

var _ vdom.Host = (*CountingHost)(nil)

// Host wraps h so that its operations feed host_operations_total.
func (m *Metrics) Host(h vdom.Host) *CountingHost {
	return &CountingHost{
		Host:    h,
		create:  m.hostOps.WithLabelValues("create_element"),
		text:    m.hostOps.WithLabelValues("create_text"),
		comment: m.hostOps.WithLabelValues("create_comment"),
		insert:  m.hostOps.WithLabelValues("insert"),
		remove:  m.hostOps.WithLabelValues("remove"),
		setText: m.hostOps.WithLabelValues("set_text"),
		setAttr: m.hostOps.WithLabelValues("set_attr"),
		rmAttr:  m.hostOps.WithLabelValues("remove_attr"),
	}
}

func (h *CountingHost) CreateElement(tag, ns string) vdom.Node {
	h.create.Inc()
	return h.Host.CreateElement(tag, ns)
}

func (h *CountingHost) CreateText(text string) vdom.Node {
	h.text.Inc()
	return h.Host.CreateText(text)
}

func (h *CountingHost) CreateComment(text string) vdom.Node {
	h.comment.Inc()
	return h.Host.CreateComment(text)
}

func (h *CountingHost) Insert(parent, node, ref vdom.Node) {
	h.insert.Inc()
	h.Host.Insert(parent, node, ref)
}

func (h *CountingHost) Remove(node vdom.Node) {
	h.remove.Inc()
	h.Host.Remove(node)
}

func (h *CountingHost) SetText(node vdom.Node, text string) {
	h.setText.Inc()
	h.Host.SetText(node, text)
}

func (h *CountingHost) SetAttr(node vdom.Node, key string, value any) {
	h.setAttr.Inc()
	h.Host.SetAttr(node, key, value)
}

func (h *CountingHost) RemoveAttr(node vdom.Node, key string) {
	h.rmAttr.Inc()
	h.Host.RemoveAttr(node, key)
}
