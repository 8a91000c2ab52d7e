package deeprag

import (
	"fmt"
)

// DefaultMaxGroupSize is the largest number of files a single analysis pass
// is expected to digest.
const DefaultMaxGroupSize = 42

// FileGroup is an ordered, bounded-size subset of the input file list,
// processed as one unit. Immutable once created.
type FileGroup []string

// PartitionFiles breaks an ordered file list into near-equal contiguous
// groups of at most maxGroupSize files each.
//
// When the list fits in one group it is returned whole. Otherwise the
// group count is ceil(len(files)/maxGroupSize) and each group gets
// floor(len(files)/numGroups) files, with the final group absorbing the
// remainder. Order is preserved within and across groups.
func PartitionFiles(files []string, maxGroupSize int) ([]FileGroup, error) {
	if maxGroupSize <= 0 {
		return nil, fmt.Errorf("max group size must be positive, got %d", maxGroupSize)
	}

	numFiles := len(files)
	if numFiles == 0 {
		return nil, nil
	}

	// Assume at first that this will all fit in a single group
	numGroups := 1
	filesPerGroup := numFiles
	if numFiles > maxGroupSize {
		// This won't fit into a single group. Break it up as evenly as possible.
		numGroups = numFiles / maxGroupSize
		if numFiles%maxGroupSize != 0 {
			numGroups++
		}
		filesPerGroup = numFiles / numGroups
	}

	groups := make([]FileGroup, 0, numGroups)
	for groupIndex := 0; groupIndex < numGroups; groupIndex++ {
		start := groupIndex * filesPerGroup
		end := start + filesPerGroup
		if groupIndex == numGroups-1 {
			// Last group absorbs the remainder
			end = numFiles
		}
		group := make(FileGroup, end-start)
		copy(group, files[start:end])
		groups = append(groups, group)
	}

	return groups, nil
}
