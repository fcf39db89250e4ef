package auth

// Action is an operation a subject performs on a resource.
type Action string

// Resource tags a kind of protected object.
type Resource string

// Actions.
const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionList   Action = "list"
	// ActionVerify assigns a role to an unverified account.
	ActionVerify Action = "verify"
)

// Resources.
const (
	ResourceClient        Resource = "client"
	ResourceLicense       Resource = "license"
	ResourceEquipment     Resource = "equipment"
	ResourceAttachment    Resource = "attachment"
	ResourceExport        Resource = "export"
	ResourceUser          Resource = "user"
	ResourceSettings      Resource = "settings"
	ResourceNotification  Resource = "notification"
	ResourceAlertSettings Resource = "alert_settings"
)

var crud = []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionList} //nolint:gochecknoglobals
