package prt

// State models the lifecycle of a PRT-backed authentication:
//
//	NeedPRT --acquire--> HavePRT --build_cookie--> HaveCookie
//	                          ^                        |
//	                          `------renew-------'     v
//	                                              GetAuthCode
//	                                                    |
//	                                               redeem_code
//	                                                    v
//	                                                  Done
//
// Callers are not required to go through a State value to call the
// individual operations (Acquire/Renew/BuildCookieV1/BuildCookieV2/
// AuthenticateWithPRTCookie are
// independently usable), but it documents the dependency order the
// engine assumes: a cookie cannot be built before a PRT exists, and
// redemption cannot happen before a cookie has been authorized.
type State int

const (
	StateNeedPRT State = iota
	StateHavePRT
	StateHaveCookie
	StateGetAuthCode
	StateDone
)

func (s State) String() string {
	switch s {
	case StateNeedPRT:
		return "NeedPRT"
	case StateHavePRT:
		return "HavePRT"
	case StateHaveCookie:
		return "HaveCookie"
	case StateGetAuthCode:
		return "GetAuthCode"
	case StateDone:
		return "Done"
	default:
		return "Unknown"
	}
}
