package nbt

// Size returns the number of bytes the payload of t occupies on the wire,
// without its tag id or name. It performs no I/O and always agrees with
// what an Encoder writes. A nil tag has size 0.
func Size(t *Tag) int {
	d, ok := lookup(t.ID())
	if !ok {
		return 0
	}
	return d.size(t)
}

// NamedSize returns the wire size of a complete root: tag id byte, name and
// payload.
func NamedSize(nt NamedTag) int {
	return 1 + stringSize(nt.Name) + Size(nt.Tag)
}

func stringSize(s string) int {
	return 2 + len(s)
}

func fixedSize(t *Tag) int {
	return descriptors[t.id].width
}

func stringTagSize(t *Tag) int {
	return stringSize(t.str)
}

func arraySize(t *Tag) int {
	var n int
	switch t.id {
	case TagByteArray:
		n = len(t.bytes)
	case TagIntArray:
		n = len(t.ints)
	case TagLongArray:
		n = len(t.longs)
	}
	return 4 + n*descriptors[t.id].elem
}

// listSize is 1 kind byte + 4 count bytes + the element payloads. The Empty
// list is always exactly 5.
func listSize(t *Tag) int {
	size := 5
	for _, item := range t.list.items {
		size += Size(item)
	}
	return size
}

// compoundSize is the sum of (id byte + name + payload) per entry plus the
// trailing End byte.
func compoundSize(t *Tag) int {
	size := 1
	for _, e := range t.compound.entries {
		size += 1 + stringSize(e.Name) + Size(e.Tag)
	}
	return size
}
