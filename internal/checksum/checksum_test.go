package checksum

import "testing"

func TestSum(t *testing.T) {
	// SHA-256 of "abc".
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got := Sum([]byte("abc")); got != want {
		t.Errorf("Sum = %s, want %s", got, want)
	}
}

func TestMatches(t *testing.T) {
	data := []byte("blob content")
	if !Matches(data, Sum(data)) {
		t.Error("matching digest rejected")
	}
	if Matches(data, Sum([]byte("other"))) {
		t.Error("mismatched digest accepted")
	}
	if !Matches(data, "") {
		t.Error("absent digest should not fail verification")
	}
}
