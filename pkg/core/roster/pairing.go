package roster

import "github.com/danielhward/serviceroster/pkg/core/model"

// pairingAllowed answers whether two participants may share a slot.
// The only exclusion: two small-copy participants never pair.
func pairingAllowed(a, b model.Participant) bool {
	return !(a.CopyType == model.CopySmall && b.CopyType == model.CopySmall)
}

// orderPair returns the pair with a lone small-copy participant at index 1.
// Slot position 0 is the lead position and a small-copy participant cannot
// hold it when paired with a large-copy partner.
func orderPair(first, second model.Participant) (model.Participant, model.Participant) {
	if first.CopyType == model.CopySmall && second.CopyType != model.CopySmall {
		return second, first
	}
	return first, second
}
