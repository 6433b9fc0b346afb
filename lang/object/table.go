package object

// tableMaxLoad is the load factor threshold: once count+1 would exceed
// capacity*tableMaxLoad, the table grows before inserting.
const tableMaxLoad = 0.75

const tableMinCapacity = 8

type entry struct {
	key   *ObjString // nil key with a true Value.Bool means tombstone; nil key with any other Value means never-used
	value Value
	used  bool // true once this slot has ever held a live entry (distinguishes "empty" from "tombstone")
	tomb  bool
}

// Table is an open-addressed hash table with linear probing and tombstone
// deletion, keyed by interned *ObjString identity. It backs globals,
// instance fields, class method tables, and the VM's string-intern set.
type Table struct {
	count   int // live entries plus tombstones, used for the load-factor check
	entries []entry
}

// NewTable returns an empty table.
func NewTable() *Table { return &Table{} }

// Count returns the number of live (non-tombstone) entries.
func (t *Table) Count() int {
	if t.entries == nil {
		return 0
	}
	live := 0
	for i := range t.entries {
		if t.entries[i].used && !t.entries[i].tomb {
			live++
		}
	}
	return live
}

// Get returns the value stored for key, and whether key was present.
func (t *Table) Get(key *ObjString) (Value, bool) {
	if len(t.entries) == 0 {
		return Value{}, false
	}
	e := findEntry(t.entries, key)
	if !e.used || e.tomb {
		return Value{}, false
	}
	return e.value, true
}

// Set stores value under key, growing the table first if needed. It returns
// true if key was not already present (a new key was added).
func (t *Table) Set(key *ObjString, value Value) bool {
	if float64(t.count+1) > float64(len(t.entries))*tableMaxLoad {
		capacity := tableMinCapacity
		if len(t.entries) > 0 {
			capacity = len(t.entries) * 2
		}
		t.adjustCapacity(capacity)
	}

	e := findEntry(t.entries, key)
	isNewKey := !e.used || e.tomb
	if !e.used {
		t.count++ // a reused tombstone is already counted
	}
	e.key = key
	e.value = value
	e.used = true
	e.tomb = false
	return isNewKey
}

// Delete removes key from the table, leaving a tombstone so later probes
// for other keys that hashed into the same run keep working. Returns
// whether key was present.
func (t *Table) Delete(key *ObjString) bool {
	if len(t.entries) == 0 {
		return false
	}
	e := findEntry(t.entries, key)
	if !e.used || e.tomb {
		return false
	}
	e.key = nil
	e.used = true
	e.tomb = true
	e.value = BoolVal(true) // sentinel marker, unused by lookups
	return true
}

// AddAll copies every live entry of t into dst, used by the INHERIT opcode
// to copy a superclass's method table into a subclass's.
func (t *Table) AddAll(dst *Table) {
	for i := range t.entries {
		e := &t.entries[i]
		if e.used && !e.tomb {
			dst.Set(e.key, e.value)
		}
	}
}

// FindString supports interning: it probes by hash and byte content and
// returns the existing interned string with that content, or nil if none is
// present yet.
func (t *Table) FindString(chars string, hash uint32) *ObjString {
	if len(t.entries) == 0 {
		return nil
	}
	mask := uint32(len(t.entries) - 1)
	index := hash & mask
	for {
		e := &t.entries[index]
		if !e.used {
			return nil
		}
		if !e.tomb && e.key.Hash == hash && e.key.Chars == chars {
			return e.key
		}
		index = (index + 1) & mask
	}
}

// Intern returns the canonical *ObjString for chars, allocating and
// registering a new one if this is the first time this content is seen.
func (t *Table) Intern(chars string) *ObjString {
	hash := hashString(chars)
	if existing := t.FindString(chars, hash); existing != nil {
		return existing
	}
	s := &ObjString{Chars: chars, Hash: hash}
	t.Set(s, Nil)
	return s
}

func findEntry(entries []entry, key *ObjString) *entry {
	mask := uint32(len(entries) - 1)
	index := key.Hash & mask
	var tombstone *entry
	for {
		e := &entries[index]
		switch {
		case !e.used:
			if tombstone != nil {
				return tombstone
			}
			return e
		case e.tomb:
			if tombstone == nil {
				tombstone = e
			}
		case e.key == key:
			return e
		}
		index = (index + 1) & mask
	}
}

func (t *Table) adjustCapacity(capacity int) {
	newEntries := make([]entry, capacity)
	newCount := 0
	for i := range t.entries {
		old := &t.entries[i]
		if !old.used || old.tomb {
			continue
		}
		dst := findEntry(newEntries, old.key)
		dst.key = old.key
		dst.value = old.value
		dst.used = true
		newCount++
	}
	t.entries = newEntries
	t.count = newCount
}
