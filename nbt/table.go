package nbt

// descriptor holds everything the codec needs to know about one tag kind.
// Dispatch over this table replaces a hand-written switch per operation.
type descriptor struct {
	title string
	width int // fixed payload width of scalar kinds, 0 otherwise
	elem  int // element width of array kinds, 0 otherwise

	write func(e *Encoder, t *Tag, depth int) error
	read  func(d *Decoder, depth int) (*Tag, error)
	size  func(t *Tag) int
}

// descriptors is indexed by TagID. TagEnd has a title only.
var descriptors [TagLongArray + 1]descriptor

func init() {
	descriptors = [TagLongArray + 1]descriptor{
		TagEnd:       {title: "End"},
		TagByte:      {title: "Byte", width: 1, write: writeByte, read: readByte, size: fixedSize},
		TagShort:     {title: "Short", width: 2, write: writeShort, read: readShort, size: fixedSize},
		TagInt:       {title: "Int", width: 4, write: writeInt, read: readInt, size: fixedSize},
		TagLong:      {title: "Long", width: 8, write: writeLong, read: readLong, size: fixedSize},
		TagFloat:     {title: "Float", width: 4, write: writeFloat, read: readFloat, size: fixedSize},
		TagDouble:    {title: "Double", width: 8, write: writeDouble, read: readDouble, size: fixedSize},
		TagByteArray: {title: "ByteArray", elem: 1, write: writeByteArray, read: readByteArray, size: arraySize},
		TagString:    {title: "String", write: writeStringTag, read: readStringTag, size: stringTagSize},
		TagList:      {title: "List", write: writeList, read: readList, size: listSize},
		TagCompound:  {title: "Compound", write: writeCompound, read: readCompound, size: compoundSize},
		TagIntArray:  {title: "IntArray", elem: 4, write: writeIntArray, read: readIntArray, size: arraySize},
		TagLongArray: {title: "LongArray", elem: 8, write: writeLongArray, read: readLongArray, size: arraySize},
	}
}

// lookup returns the descriptor of a data kind.
func lookup(id TagID) (*descriptor, bool) {
	if !id.IsValid() {
		return nil, false
	}
	return &descriptors[id], true
}
