package dto

type GenerateInput struct {
	Force bool
}

type GenerateOutput struct {
	Path string
}

type DemoInput struct {
	Cipher  string
	Message string
	Force   bool
}

type DemoOutput struct {
	Path      string
	Cipher    string
	Envelope  string
	Recovered string
	Match     bool
}
