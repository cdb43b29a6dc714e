package server

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/firsttechlabs/simpleinvoice-be/internal/tenantcontext"
	"github.com/gin-gonic/gin"
)

const maxProofSize = 10 << 20 // 10 MiB

var proofContentTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".pdf":  "application/pdf",
}

// @Summary      Upload Payment Proof
// @Description  Attach a payment proof file to an invoice
// @Tags         invoices
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string  true  "Invoice ID"
// @Param        file  formData  file    true  "Proof file (png, jpeg or pdf)"
// @Success      200  {object}  invoicedomain.Invoice
// @Router       /invoices/{id}/payment-proof [post]
func (s *Server) UploadPaymentProof(c *gin.Context) {
	tenantID, ok := tenantcontext.TenantIDFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	invoiceID := strings.TrimSpace(c.Param("id"))

	header, err := c.FormFile("file")
	if err != nil {
		AbortWithError(c, newValidationError("file", "missing_file", "file is required"))
		return
	}
	if header.Size <= 0 {
		AbortWithError(c, newValidationError("file", "empty_file", "file is empty"))
		return
	}
	if header.Size > maxProofSize {
		AbortWithError(c, newValidationError("file", "file_too_large", "file exceeds 10 MiB"))
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	contentType, ok := proofContentTypes[ext]
	if !ok {
		AbortWithError(c, newValidationError("file", "unsupported_file_type", "only png, jpeg and pdf are accepted"))
		return
	}

	file, err := header.Open()
	if err != nil {
		AbortWithError(c, err)
		return
	}
	defer file.Close()

	name := fmt.Sprintf("%s/%s/proof%s", tenantID.String(), invoiceID, ext)
	url, err := s.store.Put(c.Request.Context(), name, contentType, file)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.invoiceSvc.AttachPaymentProof(c.Request.Context(), invoiceID, url)
	if err != nil {
		// The invoice rejected the proof; drop the orphaned object.
		_ = s.store.Delete(c.Request.Context(), name)
		AbortWithError(c, err)
		return
	}

	s.audit(c, "invoice.attach_proof", "invoice", invoiceID, map[string]any{
		"file": header.Filename,
	})
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
