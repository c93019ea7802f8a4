package capture

// iouDuplicateThreshold is the bounding box overlap above which two
// detections are treated as the same physical face.
const iouDuplicateThreshold = 0.5

// ComputeIoU calculates Intersection over Union between two bounding boxes.
// bbox1 and bbox2 are [x1, y1, x2, y2] in the same coordinate system.
func ComputeIoU(bbox1, bbox2 []float64) float64 {
	if len(bbox1) != 4 || len(bbox2) != 4 {
		return 0
	}

	// Calculate intersection.
	x1 := max(bbox1[0], bbox2[0])
	y1 := max(bbox1[1], bbox2[1])
	x2 := min(bbox1[2], bbox2[2])
	y2 := min(bbox1[3], bbox2[3])

	if x2 <= x1 || y2 <= y1 {
		return 0 // No intersection
	}

	intersection := (x2 - x1) * (y2 - y1)

	// Calculate union.
	area1 := (bbox1[2] - bbox1[0]) * (bbox1[3] - bbox1[1])
	area2 := (bbox2[2] - bbox2[0]) * (bbox2[3] - bbox2[1])
	union := area1 + area2 - intersection

	if union <= 0 {
		return 0
	}
	return intersection / union
}

// dedupeOverlapping drops detections whose bounding box mostly overlaps an
// earlier, higher-scored one. Some detector builds emit near-duplicate
// boxes for the same face at different pyramid scales; only the best-scored
// box per face survives.
func dedupeOverlapping(faces []FaceDetection) []FaceDetection {
	if len(faces) < 2 {
		return faces
	}

	kept := make([]FaceDetection, 0, len(faces))
	for _, f := range faces {
		duplicate := false
		for i := range kept {
			if ComputeIoU(f.BBox, kept[i].BBox) < iouDuplicateThreshold {
				continue
			}
			duplicate = true
			if f.DetScore > kept[i].DetScore {
				kept[i] = f
			}
			break
		}
		if !duplicate {
			kept = append(kept, f)
		}
	}
	return kept
}
