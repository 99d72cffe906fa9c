package book

// levelQueue is one price level inside a side container: the trackers
// resting at a key, in arrival order. First inserted is first matched.
type levelQueue struct {
	key      ComparablePrice
	trackers []*Tracker
}

func (q *levelQueue) push(t *Tracker) { q.trackers = append(q.trackers, t) }

func (q *levelQueue) empty() bool { return len(q.trackers) == 0 }

// removeAt erases the tracker at index i preserving arrival order.
func (q *levelQueue) removeAt(i int) {
	copy(q.trackers[i:], q.trackers[i+1:])
	q.trackers[len(q.trackers)-1] = nil
	q.trackers = q.trackers[:len(q.trackers)-1]
}

type color uint8

const (
	red   color = 0
	black color = 1
)

type treeNode struct {
	key    ComparablePrice
	queue  *levelQueue
	color  color
	left   *treeNode
	right  *treeNode
	parent *treeNode
}

// sideTree is a red-black tree of price levels for one side of the
// book, ordered by ComparablePrice.Less so that the best (first to
// match) level is always the minimum node.
type sideTree struct {
	root *treeNode
	nil_ *treeNode // sentinel (black)
	size int
}

func newSideTree() *sideTree {
	nilNode := &treeNode{color: black}
	return &sideTree{root: nilNode, nil_: nilNode}
}

// Size returns the number of occupied price levels.
func (t *sideTree) Size() int { return t.size }

func (t *sideTree) find(key ComparablePrice) *levelQueue {
	n := t.root
	for n != t.nil_ {
		switch {
		case key.Less(n.key):
			n = n.left
		case n.key.Less(key):
			n = n.right
		default:
			return n.queue
		}
	}
	return nil
}

// upsert returns the queue for key, creating the level if absent.
func (t *sideTree) upsert(key ComparablePrice) *levelQueue {
	y := t.nil_
	x := t.root
	for x != t.nil_ {
		y = x
		switch {
		case key.Less(x.key):
			x = x.left
		case x.key.Less(key):
			x = x.right
		default:
			return x.queue
		}
	}

	q := &levelQueue{key: key}
	z := &treeNode{key: key, queue: q, color: red, left: t.nil_, right: t.nil_, parent: y}
	if y == t.nil_ {
		t.root = z
	} else if z.key.Less(y.key) {
		y.left = z
	} else {
		y.right = z
	}
	t.insertFixup(z)
	t.size++
	return q
}

func (t *sideTree) delete(key ComparablePrice) bool {
	z := t.searchNode(key)
	if z == t.nil_ {
		return false
	}
	t.deleteNode(z)
	t.size--
	return true
}

// bestQueue returns the level that matches first, or nil when the side
// is empty.
func (t *sideTree) bestQueue() *levelQueue {
	n := t.minNode(t.root)
	if n == t.nil_ {
		return nil
	}
	return n.queue
}

// eachBestFirst visits levels in matching order until fn returns false.
// fn must not insert or delete levels; the matcher removes exhausted
// levels after the walk.
func (t *sideTree) eachBestFirst(fn func(q *levelQueue) bool) {
	for n := t.minNode(t.root); n != t.nil_; n = t.next(n) {
		if !fn(n.queue) {
			return
		}
	}
}

func (t *sideTree) clear() {
	t.root = t.nil_
	t.size = 0
}

func (t *sideTree) searchNode(key ComparablePrice) *treeNode {
	n := t.root
	for n != t.nil_ {
		switch {
		case key.Less(n.key):
			n = n.left
		case n.key.Less(key):
			n = n.right
		default:
			return n
		}
	}
	return t.nil_
}

func (t *sideTree) minNode(n *treeNode) *treeNode {
	if n == t.nil_ {
		return t.nil_
	}
	for n.left != t.nil_ {
		n = n.left
	}
	return n
}

func (t *sideTree) next(n *treeNode) *treeNode {
	if n == nil || n == t.nil_ {
		return t.nil_
	}
	if n.right != t.nil_ {
		return t.minNode(n.right)
	}
	p := n.parent
	for p != t.nil_ && n == p.right {
		n = p
		p = p.parent
	}
	return p
}

func (t *sideTree) leftRotate(x *treeNode) {
	y := x.right
	x.right = y.left
	if y.left != t.nil_ {
		y.left.parent = x
	}
	y.parent = x.parent
	if x.parent == t.nil_ {
		t.root = y
	} else if x == x.parent.left {
		x.parent.left = y
	} else {
		x.parent.right = y
	}
	y.left = x
	x.parent = y
}

func (t *sideTree) rightRotate(y *treeNode) {
	x := y.left
	y.left = x.right
	if x.right != t.nil_ {
		x.right.parent = y
	}
	x.parent = y.parent
	if y.parent == t.nil_ {
		t.root = x
	} else if y == y.parent.right {
		y.parent.right = x
	} else {
		y.parent.left = x
	}
	x.right = y
	y.parent = x
}

func (t *sideTree) insertFixup(z *treeNode) {
	for z.parent.color == red {
		if z.parent == z.parent.parent.left {
			y := z.parent.parent.right
			if y.color == red {
				z.parent.color = black
				y.color = black
				z.parent.parent.color = red
				z = z.parent.parent
			} else {
				if z == z.parent.right {
					z = z.parent
					t.leftRotate(z)
				}
				z.parent.color = black
				z.parent.parent.color = red
				t.rightRotate(z.parent.parent)
			}
		} else {
			y := z.parent.parent.left
			if y.color == red {
				z.parent.color = black
				y.color = black
				z.parent.parent.color = red
				z = z.parent.parent
			} else {
				if z == z.parent.left {
					z = z.parent
					t.rightRotate(z)
				}
				z.parent.color = black
				z.parent.parent.color = red
				t.leftRotate(z.parent.parent)
			}
		}
	}
	t.root.color = black
}

func (t *sideTree) transplant(u, v *treeNode) {
	if u.parent == t.nil_ {
		t.root = v
	} else if u == u.parent.left {
		u.parent.left = v
	} else {
		u.parent.right = v
	}
	v.parent = u.parent
}

func (t *sideTree) deleteNode(z *treeNode) {
	y := z
	yOrigColor := y.color
	var x *treeNode

	if z.left == t.nil_ {
		x = z.right
		t.transplant(z, z.right)
	} else if z.right == t.nil_ {
		x = z.left
		t.transplant(z, z.left)
	} else {
		y = t.minNode(z.right)
		yOrigColor = y.color
		x = y.right
		if y.parent == z {
			x.parent = y
		} else {
			t.transplant(y, y.right)
			y.right = z.right
			y.right.parent = y
		}
		t.transplant(z, y)
		y.left = z.left
		y.left.parent = y
		y.color = z.color
	}

	if yOrigColor == black {
		t.deleteFixup(x)
	}
}

func (t *sideTree) deleteFixup(x *treeNode) {
	for x != t.root && x.color == black {
		if x == x.parent.left {
			w := x.parent.right
			if w.color == red {
				w.color = black
				x.parent.color = red
				t.leftRotate(x.parent)
				w = x.parent.right
			}
			if w.left.color == black && w.right.color == black {
				w.color = red
				x = x.parent
			} else {
				if w.right.color == black {
					w.left.color = black
					w.color = red
					t.rightRotate(w)
					w = x.parent.right
				}
				w.color = x.parent.color
				x.parent.color = black
				w.right.color = black
				t.leftRotate(x.parent)
				x = t.root
			}
		} else {
			w := x.parent.left
			if w.color == red {
				w.color = black
				x.parent.color = red
				t.rightRotate(x.parent)
				w = x.parent.left
			}
			if w.right.color == black && w.left.color == black {
				w.color = red
				x = x.parent
			} else {
				if w.left.color == black {
					w.right.color = black
					w.color = red
					t.leftRotate(w)
					w = x.parent.left
				}
				w.color = x.parent.color
				x.parent.color = black
				w.left.color = black
				t.rightRotate(x.parent)
				x = t.root
			}
		}
	}
	x.color = black
}
