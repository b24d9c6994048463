package merkle

import (
	"crypto/sha256"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/scalarorg/crosschain-relayer/pkg/types"
)

// Inner = H(L || R). Odd levels duplicate the last node.
func concatAndHash(l, r common.Hash) common.Hash {
	buf := make([]byte, 0, 2*common.HashLength)
	buf = append(buf, l[:]...)
	buf = append(buf, r[:]...)
	return sha256.Sum256(buf)
}

// ComputeRoot folds a path over a leaf. The destination chain checks the result
// against the root it indexed for the parent chain height.
func ComputeRoot(leaf common.Hash, path *types.MerklePath) common.Hash {
	current := leaf
	if path == nil {
		return current
	}
	for _, node := range path.Nodes {
		if node.IsLeftChildNode {
			current = concatAndHash(node.Hash, current)
		} else {
			current = concatAndHash(current, node.Hash)
		}
	}
	return current
}

func Root(leaves []common.Hash) common.Hash {
	if len(leaves) == 0 {
		return common.Hash{}
	}
	level := append([]common.Hash(nil), leaves...)
	for len(level) > 1 {
		level = nextLevel(level)
	}
	return level[0]
}

// PathFor builds the inclusion path of leaves[index].
func PathFor(leaves []common.Hash, index int) (*types.MerklePath, error) {
	if index < 0 || index >= len(leaves) {
		return nil, fmt.Errorf("leaf index %d out of range [0,%d)", index, len(leaves))
	}
	path := &types.MerklePath{}
	level := append([]common.Hash(nil), leaves...)
	for len(level) > 1 {
		if len(level)%2 == 1 {
			level = append(level, level[len(level)-1])
		}
		if index%2 == 0 {
			path.Nodes = append(path.Nodes, types.MerklePathNode{Hash: level[index+1]})
		} else {
			path.Nodes = append(path.Nodes, types.MerklePathNode{Hash: level[index-1], IsLeftChildNode: true})
		}
		level = nextLevel(level)
		index /= 2
	}
	return path, nil
}

func nextLevel(level []common.Hash) []common.Hash {
	if len(level)%2 == 1 {
		level = append(level, level[len(level)-1])
	}
	next := make([]common.Hash, len(level)/2)
	for i := 0; i < len(level); i += 2 {
		next[i/2] = concatAndHash(level[i], level[i+1])
	}
	return next
}
