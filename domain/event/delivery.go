package event

// Audience selects who receives a Delivery.
type Audience int

const (
	// AudienceSession targets the single connection that sent a request.
	AudienceSession Audience = iota
	// AudienceUsers targets every connection bound to one of UserIDs.
	AudienceUsers
	// AudienceAll targets every open connection.
	AudienceAll
)

func (a Audience) String() string {
	switch a {
	case AudienceSession:
		return "session"
	case AudienceUsers:
		return "users"
	case AudienceAll:
		return "all"
	default:
		return "unknown"
	}
}

type Delivery struct {
	Audience  Audience
	SessionID string
	UserIDs   []string
	Event     Event
}

func ToSession(sessionID string, evt Event) Delivery {
	return Delivery{Audience: AudienceSession, SessionID: sessionID, Event: evt}
}

func ToUsers(userIDs []string, evt Event) Delivery {
	return Delivery{Audience: AudienceUsers, UserIDs: userIDs, Event: evt}
}

func ToAll(evt Event) Delivery {
	return Delivery{Audience: AudienceAll, Event: evt}
}
