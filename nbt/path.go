package nbt

import (
	"strconv"
	"strings"
)

// pathElem is one step from the root: a compound entry name, or a list
// index when index >= 0.
type pathElem struct {
	name  string
	index int
}

// pathStack tracks where the codec is inside the tree. It is only formatted
// when an error is reported.
type pathStack []pathElem

func (p *pathStack) pushName(name string) {
	*p = append(*p, pathElem{name: name, index: -1})
}

func (p *pathStack) pushIndex(i int) {
	*p = append(*p, pathElem{index: i})
}

func (p pathStack) setIndex(i int) {
	p[len(p)-1].index = i
}

func (p *pathStack) pop() {
	*p = (*p)[:len(*p)-1]
}

func (p *pathStack) reset() {
	*p = (*p)[:0]
}

// String renders the path as name.name[3].name.
func (p pathStack) String() string {
	var sb strings.Builder
	for i, e := range p {
		if e.index >= 0 {
			sb.WriteByte('[')
			sb.WriteString(strconv.Itoa(e.index))
			sb.WriteByte(']')
			continue
		}
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(e.name)
	}
	return sb.String()
}
