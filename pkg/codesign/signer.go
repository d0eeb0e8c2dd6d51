package codesign

import (
	"crypto/x509"
	"fmt"

	"go.mozilla.org/pkcs7"
)

// SignerInfo is the subset of an X.509 certificate worth surfacing from a
// code-signature's CMS blob: the leaf signer plus the chain that vouches
// for it (SPEC_FULL.md §1 domain stack, "code-signature signer identity").
type SignerInfo struct {
	CommonName   string
	Organization []string
	Issuer       string
	SerialNumber string
	NotBefore    string
	NotAfter     string
}

// ParseSigners decodes a DER-encoded CMS/PKCS#7 blob (types.CodeSignature's
// CMSSignature field) and returns one SignerInfo per embedded certificate,
// leaf first. Returns (nil, nil) if cmsData is empty (ad-hoc signatures
// carry no CMS blob).
func ParseSigners(cmsData []byte) ([]SignerInfo, error) {
	if len(cmsData) == 0 {
		return nil, nil
	}
	p7, err := pkcs7.Parse(cmsData)
	if err != nil {
		return nil, fmt.Errorf("parsing CMS signature: %w", err)
	}
	out := make([]SignerInfo, 0, len(p7.Certificates))
	for _, cert := range p7.Certificates {
		out = append(out, signerInfoFromCert(cert))
	}
	return out, nil
}

func signerInfoFromCert(cert *x509.Certificate) SignerInfo {
	return SignerInfo{
		CommonName:   cert.Subject.CommonName,
		Organization: cert.Subject.Organization,
		Issuer:       cert.Issuer.CommonName,
		SerialNumber: cert.SerialNumber.String(),
		NotBefore:    cert.NotBefore.Format("2006-01-02T15:04:05Z07:00"),
		NotAfter:     cert.NotAfter.Format("2006-01-02T15:04:05Z07:00"),
	}
}
