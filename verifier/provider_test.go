package verifier

import "testing"

func TestClassifyProvider(t *testing.T) {
	testCases := []struct {
		name   string
		mxHost string
		want   Provider
	}{
		{"google workspace", "aspmx.l.google.com.", Gmail},
		{"gmail inbound", "gmail-smtp-in.l.google.com.", Gmail},
		{"google without trailing dot", "alt1.aspmx.l.google.com", Gmail},
		{"google uppercase", "ASPMX.L.GOOGLE.COM.", Gmail},
		{"consumer outlook", "hotmail-com.olc.protection.outlook.com.", HotmailB2C},
		{"exchange online tenant", "example-com.mail.protection.outlook.com.", HotmailB2B},
		{"yahoo", "mta5.am0.yahoodns.net.", Yahoo},
		{"yahoo without dot", "mta7.am0.yahoodns.net", Yahoo},
		{"mimecast", "us-smtp-inbound-1.mimecast.com.", Mimecast},
		{"proofpoint", "mx0a-00012345.pphosted.com.", Proofpoint},
		{"proofpoint essentials", "mx1-us1.ppe-hosted.com.", Proofpoint},
		{"plain self-hosted", "mail.example.com.", EverythingElse},
		{"bare apex is not a subdomain match", "google.com.", EverythingElse},
		{"lookalike domain", "mail.notgoogle.com.", EverythingElse},
		{"empty host", "", EverythingElse},
		{"whitespace only", "   ", EverythingElse},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyProvider(tc.mxHost); got != tc.want {
				t.Errorf("ClassifyProvider(%q) = %s, want %s", tc.mxHost, got, tc.want)
			}
		})
	}
}

func TestClassifyProviderB2CBeatsB2B(t *testing.T) {
	// The consumer suffix is a subdomain of the B2B one; rule order must
	// keep consumer mailboxes out of the tenant bucket.
	host := "hotmail-com.olc.protection.outlook.com."
	if got := ClassifyProvider(host); got != HotmailB2C {
		t.Fatalf("ClassifyProvider(%q) = %s, want %s", host, got, HotmailB2C)
	}
}
