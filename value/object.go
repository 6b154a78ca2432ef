package value

type Field struct {
	Name  string
	Value Value
}

// Object is an ordered map of unique names to values.
type Object struct {
	fields []Field
	index  map[string]int
}

// NewObject builds an object value from fields in order. A repeated name
// keeps its first position and takes the last value.
func NewObject(fields ...Field) Value {
	b := NewObjectBuilder(len(fields))
	for _, f := range fields {
		b.Set(f.Name, f.Value)
	}
	return b.Build()
}

func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.fields)
}

func (o *Object) Get(name string) (Value, bool) {
	if o == nil {
		return Value{}, false
	}
	i, ok := o.index[name]
	if !ok {
		return Value{}, false
	}
	return o.fields[i].Value, true
}

func (o *Object) Has(name string) bool {
	_, ok := o.Get(name)
	return ok
}

func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	keys := make([]string, len(o.fields))
	for i, f := range o.fields {
		keys[i] = f.Name
	}
	return keys
}

// Fields returns a copy of the fields in insertion order.
func (o *Object) Fields() []Field {
	if o == nil {
		return nil
	}
	out := make([]Field, len(o.fields))
	copy(out, o.fields)
	return out
}

// Range calls fn for each field in order until fn returns false.
func (o *Object) Range(fn func(name string, v Value) bool) {
	if o == nil {
		return
	}
	for _, f := range o.fields {
		if !fn(f.Name, f.Value) {
			return
		}
	}
}

// ObjectBuilder assembles an object value. It must not be used after Build.
type ObjectBuilder struct {
	obj *Object
}

func NewObjectBuilder(capacity int) *ObjectBuilder {
	return &ObjectBuilder{obj: &Object{
		fields: make([]Field, 0, capacity),
		index:  make(map[string]int, capacity),
	}}
}

func (b *ObjectBuilder) Set(name string, v Value) {
	if i, ok := b.obj.index[name]; ok {
		b.obj.fields[i].Value = v
		return
	}
	b.obj.index[name] = len(b.obj.fields)
	b.obj.fields = append(b.obj.fields, Field{Name: name, Value: v})
}

func (b *ObjectBuilder) Len() int { return len(b.obj.fields) }

func (b *ObjectBuilder) Build() Value {
	obj := b.obj
	b.obj = nil
	return Value{kind: ObjectKind, obj: obj}
}
