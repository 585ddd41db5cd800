package dto

type LoginInput struct {
	ParticipantCode string
	BirthDate       string
	RememberMe      bool
}

type LanguageInput struct {
	Language string
}

type PrefillInput struct {
	Link string
}

type PrefillOutput struct {
	ParticipantCode string
	BirthDate       string
	Found           bool
	SanitizedLink   string
}

type FormOutput struct {
	Index    int
	Progress float64
	Link     string
	Finished bool
}

type SessionOutput struct {
	State           string
	Authenticated   bool
	BusyLoading     bool
	HasToken        bool
	StorageMode     string
	Language        string
	LastError       string
	ParticipantCode string
	BirthDate       string
	Forms           []FormOutput
	Finished        []int
	Ongoing         []int
	JustCompleted   []int
	FirstIncomplete int
	HasIncomplete   bool
	Aligned         bool
}
