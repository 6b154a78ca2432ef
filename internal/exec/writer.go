package exec

import (
	"bytes"

	"github.com/gqlkit/graphql/errors"
)

// writeNode writes an execNode to the output buffer. It reports any errors encountered and returns true if
// the parent must become NULL too (error propagation).
func writeNode(r *Request, out *bytes.Buffer, n *execNode) bool {
	if n.err != nil {
		r.AddError(n.err)
		out.WriteString("null")
		return n.typ.NonNull
	}
	if n.null {
		out.WriteString("null")
		if n.typ.NonNull {
			err := errors.Errorf("got nil for non-null %q", n.typ.String())
			err.Path = n.fullPath()
			err.Locations = n.locations()
			r.AddError(err)
			return true
		}
		return false
	}
	switch {
	case n.typ.Elem != nil:
		return writeList(r, out, n)
	case n.object:
		return writeObj(r, out, n)
	default:
		return writeLeaf(r, out, n)
	}
}

// writeLeaf writes a serialized scalar or enum. It follows the writeNode semantic.
func writeLeaf(r *Request, out *bytes.Buffer, n *execNode) bool {
	w := newResetWriter(out)
	if err := n.leaf.WriteJSON(w.Buffer); err != nil {
		writeErr := errors.Errorf("json.Encode: %v", err)
		writeErr.Path = n.fullPath()
		r.AddError(writeErr)
		w.PropagateNull()
		return n.typ.NonNull
	}
	return false
}

// writeList writes a GraphQL list to the output buffer. It follows the writeNode semantic.
func writeList(r *Request, out *bytes.Buffer, n *execNode) bool {
	w := newResetWriter(out)
	propNull := false
	w.WriteByte('[')
	for i, c := range n.children {
		if i > 0 {
			w.WriteByte(',')
		}
		if writeNode(r, w.Buffer, c) {
			propNull = true
		}
	}
	w.WriteByte(']')
	if propNull {
		w.PropagateNull()
		return n.typ.NonNull
	}
	return false
}

// writeObj writes a GraphQL object. It reports any error it encounters and follows the writeNode semantic.
func writeObj(r *Request, out *bytes.Buffer, n *execNode) bool {
	w := newResetWriter(out)
	propNull := false
	w.WriteByte('{')
	for i, c := range n.children {
		if i > 0 {
			w.WriteByte(',')
		}
		writeKey(w.Buffer, c.field.alias)
		if writeNode(r, w.Buffer, c) {
			propNull = true
		}
	}
	w.WriteByte('}')
	if propNull {
		w.PropagateNull()
		return n.typ.NonNull
	}
	return false
}

func writeKey(out *bytes.Buffer, key string) {
	out.WriteByte('"')
	out.WriteString(key)
	out.WriteByte('"')
	out.WriteByte(':')
}

// resetWriter is a writer that appends data to an existing bytes.Buffer. The PropagateNull method can
// be used to change the written data afterwards.
type resetWriter struct {
	*bytes.Buffer
	start int
}

// newResetWriter initializes a new reset-able writer.
func newResetWriter(out *bytes.Buffer) *resetWriter {
	return &resetWriter{Buffer: out, start: out.Len()}
}

// PropagateNull changes the data appended by this writer to "null", the JSON null value. Data that has
// been written to the buffer before is unaffected.
func (w *resetWriter) PropagateNull() {
	w.Truncate(w.start)
	w.WriteString("null")
}

// objWriter is a streaming-able API for writing GraphQL objects similar to writeObj.
type objWriter struct {
	rw       *resetWriter
	propNull bool
}

// newObjWriter initializes a new object writer.
func newObjWriter(out *bytes.Buffer) *objWriter {
	return &objWriter{rw: newResetWriter(out)}
}

// Write writes a single node (key/value pair) within the object.
func (w *objWriter) Write(r *Request, n *execNode) {
	if w.rw.Len() == w.rw.start {
		w.rw.WriteByte('{')
	} else {
		w.rw.WriteByte(',')
	}
	writeKey(w.rw.Buffer, n.field.alias)

	if writeNode(r, w.rw.Buffer, n) {
		w.propNull = true
	}
}

// Flush finishes the object and propagates the NULL value if necessary.
func (w *objWriter) Flush() {
	if w.propNull {
		w.rw.PropagateNull()
		return
	}
	if w.rw.Len() == w.rw.start {
		w.rw.WriteByte('{')
	}
	w.rw.WriteByte('}')
}
