package transform

import (
	"container/heap"

	"github.com/jaylikesbunda/packr/bitio"
	"github.com/jaylikesbunda/packr/varint"
)

// huffmanEncode byte-frequency Huffman-codes data. Returns nil when data is
// empty (the caller falls back to LZ77 or raw in that case).
func huffmanEncode(data []byte) []byte {
	if len(data) == 0 {
		return nil
	}

	var freq [256]int
	for _, b := range data {
		freq[b]++
	}

	lengths := huffmanLengths(freq)

	buf := varint.AppendUvarint(nil, uint64(len(data)))
	for i := 0; i < 256; i++ {
		buf = append(buf, byte(lengths[i]))
	}

	codes := canonicalCodes(lengths)

	w := bitio.NewWriter(len(data))
	for _, b := range data {
		c := codes[b]
		w.WriteBits(uint64(c.bits), uint(c.length))
	}

	return append(buf, w.Bytes()...)
}

// huffmanDecode reverses huffmanEncode.
func huffmanDecode(data []byte) ([]byte, error) {
	n, consumed, err := varint.Uvarint(data)
	if err != nil {
		return nil, err
	}
	p := consumed

	if p+256 > len(data) {
		return nil, errTruncated("huffman length table")
	}

	var lengths [256]int
	for i := 0; i < 256; i++ {
		lengths[i] = int(data[p+i])
	}
	p += 256

	root := buildTrie(canonicalCodes(lengths))

	r := bitio.NewReader(data[p:])
	out := make([]byte, 0, n)

	for uint64(len(out)) < n {
		node := root
		for !node.isLeaf {
			bit, err := r.ReadBit()
			if err != nil {
				return nil, err
			}
			node = node.children[bit]
			if node == nil {
				return nil, errTruncated("huffman code")
			}
		}
		out = append(out, node.sym)
	}

	return out, nil
}

type huffCode struct {
	bits   uint32
	length int
}

// huffNode is a Huffman tree build node: a leaf carries a symbol, an
// internal node carries two children. Used both as the heap element during
// tree construction and as the tree itself once built.
type huffNode struct {
	freq  int
	leaf  bool
	sym   byte
	left  *huffNode
	right *huffNode
}

// huffHeap is a container/heap.Interface min-heap over huffNode by frequency.
type huffHeap []*huffNode

func (h huffHeap) Len() int            { return len(h) }
func (h huffHeap) Less(i, j int) bool  { return h[i].freq < h[j].freq }
func (h huffHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *huffHeap) Push(x interface{}) { *h = append(*h, x.(*huffNode)) }
func (h *huffHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// huffmanLengths builds per-symbol code lengths via a standard Huffman tree
// over byte frequencies. Symbols absent from data get length 0.
func huffmanLengths(freq [256]int) [256]int {
	var lengths [256]int

	pq := &huffHeap{}
	for sym := 0; sym < 256; sym++ {
		if freq[sym] > 0 {
			heap.Push(pq, &huffNode{freq: freq[sym], leaf: true, sym: byte(sym)})
		}
	}

	if pq.Len() == 0 {
		return lengths
	}
	if pq.Len() == 1 {
		only := (*pq)[0]
		lengths[only.sym] = 1
		return lengths
	}

	for pq.Len() > 1 {
		a := heap.Pop(pq).(*huffNode)
		b := heap.Pop(pq).(*huffNode)
		heap.Push(pq, &huffNode{freq: a.freq + b.freq, left: a, right: b})
	}

	root := heap.Pop(pq).(*huffNode)

	var walk func(n *huffNode, depth int)
	walk = func(n *huffNode, depth int) {
		if n.leaf {
			d := depth
			if d == 0 {
				d = 1
			}
			lengths[n.sym] = d
			return
		}
		walk(n.left, depth+1)
		walk(n.right, depth+1)
	}
	walk(root, 0)

	return lengths
}

type lenSym struct {
	sym byte
	len int
}

// canonicalCodes assigns canonical Huffman codes from a length table: sort
// symbols by (length, symbol), then assign consecutive codes, left-shifting
// whenever length increases.
func canonicalCodes(lengths [256]int) map[byte]huffCode {
	var syms []lenSym
	for sym := 0; sym < 256; sym++ {
		if lengths[sym] > 0 {
			syms = append(syms, lenSym{byte(sym), lengths[sym]})
		}
	}

	sortByLenThenSym(syms)

	codes := make(map[byte]huffCode, len(syms))
	code := 0
	prevLen := 0

	for _, s := range syms {
		code <<= uint(s.len - prevLen)
		codes[s.sym] = huffCode{bits: uint32(code), length: s.len}
		code++
		prevLen = s.len
	}

	return codes
}

func sortByLenThenSym(syms []lenSym) {
	for i := 1; i < len(syms); i++ {
		for j := i; j > 0; j-- {
			a, b := syms[j-1], syms[j]
			if a.len > b.len || (a.len == b.len && a.sym > b.sym) {
				syms[j-1], syms[j] = syms[j], syms[j-1]
			} else {
				break
			}
		}
	}
}

type trieNode struct {
	isLeaf   bool
	sym      byte
	children [2]*trieNode
}

func buildTrie(codes map[byte]huffCode) *trieNode {
	root := &trieNode{}

	for sym, c := range codes {
		node := root
		for i := c.length - 1; i >= 0; i-- {
			bit := (c.bits >> uint(i)) & 1
			if node.children[bit] == nil {
				node.children[bit] = &trieNode{}
			}
			node = node.children[bit]
		}
		node.isLeaf = true
		node.sym = sym
	}

	return root
}
