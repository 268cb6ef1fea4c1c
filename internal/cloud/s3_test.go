package cloud

import "testing"

func TestParseS3URI(t *testing.T) {
	tests := []struct {
		uri        string
		wantBucket string
		wantKey    string
		wantErr    bool
	}{
		{"s3://intake/docs/a.pdf", "intake", "docs/a.pdf", false},
		{"s3://intake/docs/", "intake", "docs/", false},
		{"s3://intake", "intake", "", false},
		{"s3:///key", "", "", true},
		{"/local/path", "", "", true},
		{"https://example.com/a.pdf", "", "", true},
	}

	for _, tt := range tests {
		bucket, key, err := ParseS3URI(tt.uri)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseS3URI(%q): expected error", tt.uri)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseS3URI(%q): %v", tt.uri, err)
			continue
		}
		if bucket != tt.wantBucket || key != tt.wantKey {
			t.Errorf("ParseS3URI(%q) = %q, %q; want %q, %q", tt.uri, bucket, key, tt.wantBucket, tt.wantKey)
		}
	}
}

func TestIsS3(t *testing.T) {
	if !IsS3("s3://b/k") {
		t.Error("expected s3 uri to be recognised")
	}
	if IsS3("S3-report.json") {
		t.Error("local file treated as s3 uri")
	}
}
