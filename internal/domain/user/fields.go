package user

// Field names a user attribute that can be selected when users are loaded
// as related records (thread authors).
type Field string

// Selectable user fields.
const (
	FieldID         Field = "id"
	FieldExternalID Field = "external_id"
	FieldUsername   Field = "username"
	FieldName       Field = "name"
	FieldBio        Field = "bio"
	FieldImage      Field = "image"
	FieldOnboarded  Field = "onboarded"
	FieldThreads    Field = "threads"
)

// Field sets used by the feed and thread views.
var (
	// AllFields selects the whole record.
	AllFields []Field

	// FeedReplyFields is the author shape of replies shown in the feed.
	FeedReplyFields = []Field{FieldID, FieldName, FieldImage}

	// ThreadViewFields is the author shape used on a thread page.
	ThreadViewFields = []Field{FieldID, FieldExternalID, FieldName, FieldImage}
)
