package dict

// Proxy is a handle to one slot of a Dictionary, returned by [Dictionary.At].
// It holds a reference to the Dictionary, not a copy, and must not outlive
// it.
//
//	d.At("layout").At("xaxis").At("type").Set("log")
type Proxy struct {
	owner *Dictionary
	key   string
}

// At returns a Proxy bound to key in d.
func (d *Dictionary) At(key string) Proxy {
	return Proxy{owner: d, key: key}
}

// Key returns the key the proxy is bound to.
func (p Proxy) Key() string { return p.key }

// Set assigns v to the bound slot, with the same conversion and ownership
// rules as [Dictionary.Add]. It panics on unsupported types.
func (p Proxy) Set(v any) Proxy {
	p.owner.Add(p.key, v)
	return p
}

// TrySet is like [Proxy.Set] but returns an error for unsupported types.
func (p Proxy) TrySet(v any) error {
	return p.owner.TryAdd(p.key, v)
}

// Get returns the Value in the bound slot.
func (p Proxy) Get() (Value, bool) {
	return p.owner.Get(p.key)
}

// Delete removes the bound slot from its Dictionary.
func (p Proxy) Delete() {
	p.owner.Delete(p.key)
}

// At descends into the nested Dictionary stored in the bound slot and
// returns a Proxy for key inside it. If the slot is missing or holds a
// non-Dictionary Value, it is replaced with an empty Dictionary first.
func (p Proxy) At(key string) Proxy {
	return Proxy{owner: p.nested(), key: key}
}

// Dict returns the nested Dictionary in the bound slot, creating it the same
// way [Proxy.At] does.
func (p Proxy) Dict() *Dictionary {
	return p.nested()
}

func (p Proxy) nested() *Dictionary {
	cur, ok := p.owner.Get(p.key)
	if ok && cur.kind == KindDict && cur.d != nil {
		return cur.d
	}
	nested := &Dictionary{}
	p.owner.put(p.key, Value{kind: KindDict, d: nested})
	return nested
}
