package entities

// Aggregate rolls item statuses up into one composite status. Declined
// dominates pending, pending dominates approved. An empty input is never
// approved; submissions without reviewable items are rejected at
// construction. Unrecognised values count as undecided.
func Aggregate(statuses []ItemStatus) ItemStatus {
	if len(statuses) == 0 {
		return ItemStatusPending
	}
	composite := ItemStatusApproved
	for _, status := range statuses {
		switch status {
		case ItemStatusDeclined:
			return ItemStatusDeclined
		case ItemStatusPending:
			composite = ItemStatusPending
		case ItemStatusApproved:
		default:
			composite = ItemStatusPending
		}
	}
	return composite
}

// EnabledActions lists the reviewer actions a composite status unlocks.
func EnabledActions(composite ItemStatus) []Action {
	switch composite {
	case ItemStatusDeclined:
		return []Action{ActionSendFeedback}
	case ItemStatusApproved:
		return []Action{ActionSave}
	case ItemStatusPending:
		return []Action{}
	default:
		return []Action{}
	}
}

// SubmitterActions lists what the submitter may do once a reviewer has sent
// feedback on a declined submission.
func SubmitterActions(submission Submission) []Action {
	if submission.CompositeStatus() == ItemStatusDeclined && submission.FeedbackComment != "" {
		return []Action{ActionResubmit}
	}
	return []Action{}
}

func HasAction(actions []Action, target Action) bool {
	for _, action := range actions {
		if action == target {
			return true
		}
	}
	return false
}
