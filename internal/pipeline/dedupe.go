package pipeline

import (
	"github.com/google/uuid"

	"leadclean/internal"
	"leadclean/internal/util"
)

// groupNamespace seeds duplicate group ids so equal keys give equal ids across runs.
var groupNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("leadclean/duplicate-group"))

// IdentityKey returns the duplicate-grouping key of a contact, or "" when
// the contact cannot be grouped.
func IdentityKey(c internal.Contact) string {
	if c.Email != "" {
		return "email:" + c.Email
	}
	first := util.FoldKey(c.FirstName)
	last := util.FoldKey(c.LastName)
	if first == "" || last == "" {
		return ""
	}
	return "name:" + first + "|" + last
}

// DetectDuplicates groups contacts by identity key. In each group of two or
// more, the highest-scoring member (earliest on ties) stays canonical and the
// rest are flagged. It returns the number of flagged contacts.
func DetectDuplicates(contacts []internal.Contact) int {
	groups := map[string][]int{}
	order := []string{}
	for i := range contacts {
		contacts[i].IsDuplicate = false
		contacts[i].DuplicateGroupID = ""
		key := IdentityKey(contacts[i])
		if key == "" {
			continue
		}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], i)
	}

	flagged := 0
	for _, key := range order {
		members := groups[key]
		if len(members) < 2 {
			continue
		}
		canonical := members[0]
		for _, idx := range members[1:] {
			if better(contacts[idx], contacts[canonical]) {
				canonical = idx
			}
		}
		id := uuid.NewSHA1(groupNamespace, []byte(key)).String()
		for _, idx := range members {
			contacts[idx].DuplicateGroupID = id
			if idx != canonical {
				contacts[idx].IsDuplicate = true
				flagged++
			}
		}
	}
	return flagged
}

// better reports whether a should replace b as canonical member.
func better(a, b internal.Contact) bool {
	if a.QualityScore != b.QualityScore {
		return a.QualityScore > b.QualityScore
	}
	return a.Row < b.Row
}
