package report

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
)

const findingsNote = "Scan reveals potential abnormalities in the affected region. " +
	"Pattern recognition suggests possible malignant characteristics requiring further investigation."

// Quadrant picks the tissue quadrant (1-4) mentioned in the clinical
// notes. It is stable for a given selection so re-rendering the same
// result never changes the text.
func Quadrant(path string, generation uint64) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(path))
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], generation)
	_, _ = h.Write(buf[:])
	return int(h.Sum32()%4) + 1
}

// ClinicalNotes returns the narrative notes shown with a result
func ClinicalNotes(quadrant int) []string {
	return []string{
		findingsNote,
		fmt.Sprintf("Tissue density variations observed in quadrant %d. "+
			"Contrast uptake patterns indicate need for detailed examination.", quadrant),
	}
}
