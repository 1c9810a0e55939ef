package lvmpool

// VTableEntry maps a method name to the constant pool index of the method a call with
// that name resolves to.
type VTableEntry struct {
	Name  string
	Index uint32
}

func (e VTableEntry) occupied() bool {
	return e.Index != 0
}

// VTable is an open addressed hash table from method name to method index.
// Collisions are resolved by linear probing. The capacity is fixed at creation.
type VTable struct {
	table []VTableEntry
	size  int
}

func NewVTable(capacity int) *VTable {
	return &VTable{table: make([]VTableEntry, capacity)}
}

// Cap returns the number of slots in the table.
func (vt *VTable) Cap() int {
	return len(vt.table)
}

// Size returns the number of occupied slots.
func (vt *VTable) Size() int {
	return vt.size
}

// Hash returns the slot that probing for name starts at.
func (vt *VTable) Hash(name string) int {
	return int(HashName(name) % uint32(len(vt.table)))
}

// Put maps name to index.  If name is already in the table, the entry is replaced,
// this is how a subclass overrides a method.
func (vt *VTable) Put(name string, index uint32) error {
	if len(vt.table) == 0 {
		return ErrVTableFull
	}
	i := vt.Hash(name)
	for range vt.table {
		ent := &vt.table[i]
		if !ent.occupied() {
			*ent = VTableEntry{Name: name, Index: index}
			vt.size++
			return nil
		}
		if ent.Name == name {
			ent.Index = index
			return nil
		}
		i = (i + 1) % len(vt.table)
	}
	return ErrVTableFull
}

// Get returns the index mapped to name.
func (vt *VTable) Get(name string) (uint32, bool) {
	if len(vt.table) == 0 {
		return 0, false
	}
	i := vt.Hash(name)
	for range vt.table {
		ent := vt.table[i]
		if !ent.occupied() {
			return 0, false
		}
		if ent.Name == name {
			return ent.Index, true
		}
		i = (i + 1) % len(vt.table)
	}
	return 0, false
}

func (vt *VTable) Exists(name string) bool {
	_, ok := vt.Get(name)
	return ok
}

// Entries returns the occupied slots in table order.
func (vt *VTable) Entries() (ret []VTableEntry) {
	for _, ent := range vt.table {
		if ent.occupied() {
			ret = append(ret, ent)
		}
	}
	return ret
}

// CopyInto puts every entry of vt into dst.
func (vt *VTable) CopyInto(dst *VTable) error {
	for _, ent := range vt.table {
		if !ent.occupied() {
			continue
		}
		if err := dst.Put(ent.Name, ent.Index); err != nil {
			return err
		}
	}
	return nil
}

// Copy puts every entry of src into dst.
func Copy(dst, src *VTable) error {
	return src.CopyInto(dst)
}

// HashName is the polynomial string hash with base 31.
func HashName(name string) (h uint32) {
	for i := 0; i < len(name); i++ {
		h = 31*h + uint32(name[i])
	}
	return h
}
