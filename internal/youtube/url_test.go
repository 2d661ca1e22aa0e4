package youtube

import (
	"errors"
	"testing"
)

func TestParseRef(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Ref
	}{
		{
			name:  "watch url",
			input: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			want:  Ref{Kind: RefVideo, Value: "dQw4w9WgXcQ"},
		},
		{
			name:  "short link",
			input: "https://youtu.be/dQw4w9WgXcQ",
			want:  Ref{Kind: RefVideo, Value: "dQw4w9WgXcQ"},
		},
		{
			name:  "shorts url",
			input: "https://youtube.com/shorts/dQw4w9WgXcQ",
			want:  Ref{Kind: RefVideo, Value: "dQw4w9WgXcQ"},
		},
		{
			name:  "bare video id",
			input: "dQw4w9WgXcQ",
			want:  Ref{Kind: RefVideo, Value: "dQw4w9WgXcQ"},
		},
		{
			name:  "channel url",
			input: "https://www.youtube.com/channel/UCBR8-60-B28hp2BmDPdntcQ",
			want:  Ref{Kind: RefChannel, Value: "UCBR8-60-B28hp2BmDPdntcQ"},
		},
		{
			name:  "bare channel id",
			input: "UCBR8-60-B28hp2BmDPdntcQ",
			want:  Ref{Kind: RefChannel, Value: "UCBR8-60-B28hp2BmDPdntcQ"},
		},
		{
			name:  "handle url",
			input: "https://www.youtube.com/@SomeCreator",
			want:  Ref{Kind: RefHandle, Value: "SomeCreator"},
		},
		{
			name:  "bare handle",
			input: "@SomeCreator",
			want:  Ref{Kind: RefHandle, Value: "SomeCreator"},
		},
		{
			name:  "custom url",
			input: "https://www.youtube.com/c/SomeCreator",
			want:  Ref{Kind: RefUsername, Value: "SomeCreator"},
		},
		{
			name:  "legacy user url",
			input: "https://www.youtube.com/user/somecreator",
			want:  Ref{Kind: RefUsername, Value: "somecreator"},
		},
		{
			name:  "scheme-less url",
			input: "www.youtube.com/watch?v=dQw4w9WgXcQ",
			want:  Ref{Kind: RefVideo, Value: "dQw4w9WgXcQ"},
		},
		{
			name:  "surrounding whitespace",
			input: "  https://youtu.be/dQw4w9WgXcQ  ",
			want:  Ref{Kind: RefVideo, Value: "dQw4w9WgXcQ"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRef(tt.input)
			if err != nil {
				t.Fatalf("ParseRef(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseRef(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseRef_Unsupported(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"https://example.com/watch?v=dQw4w9WgXcQ",
		"https://www.youtube.com/playlist?list=PL123",
		"not a reference at all",
		"https://youtu.be/tooshort",
	}

	for _, input := range inputs {
		if _, err := ParseRef(input); !errors.Is(err, ErrUnsupportedRef) {
			t.Errorf("ParseRef(%q) error = %v, want ErrUnsupportedRef", input, err)
		}
	}
}
