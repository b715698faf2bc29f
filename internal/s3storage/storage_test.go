package s3storage

import "testing"

func TestObjectKeyFromURL(t *testing.T) {
	cases := []struct {
		name    string
		fileURL string
		bucket  string
		want    string
	}{
		{
			name:    "plain",
			fileURL: "http://localhost:9000/intakedesk/aadhar_photos/abc-photo.jpg",
			bucket:  "intakedesk",
			want:    "aadhar_photos/abc-photo.jpg",
		},
		{
			name:    "query string dropped",
			fileURL: "http://localhost:9000/intakedesk/admin_documents/id1/doc.pdf?X-Amz-Expires=300",
			bucket:  "intakedesk",
			want:    "admin_documents/id1/doc.pdf",
		},
		{
			name:    "percent encoded",
			fileURL: "http://localhost:9000/intakedesk/aadhar_photos/my%20photo.jpg",
			bucket:  "intakedesk",
			want:    "aadhar_photos/my photo.jpg",
		},
		{
			name:    "other bucket",
			fileURL: "http://localhost:9000/somethingelse/aadhar_photos/photo.jpg",
			bucket:  "intakedesk",
			want:    "",
		},
		{
			name:    "not a url",
			fileURL: "garbage",
			bucket:  "intakedesk",
			want:    "",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ObjectKeyFromURL(tc.fileURL, tc.bucket); got != tc.want {
				t.Fatalf("ObjectKeyFromURL(%q) = %q, want %q", tc.fileURL, got, tc.want)
			}
		})
	}
}
