package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"casedocs/internal/model"
	"casedocs/internal/repository"
	repoMocks "casedocs/internal/repository/mocks"
	"casedocs/internal/storage"
	storeMocks "casedocs/internal/storage/mocks"
)

func validInput() DocumentInput {
	return DocumentInput{
		ComplainantName: "A",
		Subject:         "S1",
		Source:          "HR",
		ReceivedDate:    time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestDocumentService_Create(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		input      DocumentInput
		file       func() *FileUpload
		setupMocks func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository)
		wantErr    error
		wantErrMsg string
		check      func(t *testing.T, doc *model.Document)
	}{
		{
			name:  "metadata only, no file",
			input: validInput(),
			file:  func() *FileUpload { return nil },
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("Create", ctx, mock.MatchedBy(func(f repository.DocumentFields) bool {
					return f.ComplainantName == "A" && f.Subject == "S1" && f.Source == "HR"
				})).Return(&model.Document{ID: "gen-id", ComplainantName: "A"}, nil)
			},
			check: func(t *testing.T, doc *model.Document) {
				assert.Equal(t, "gen-id", doc.ID)
				assert.False(t, doc.HasFile())
			},
		},
		{
			name:  "with file: record, blob, patch",
			input: validInput(),
			file: func() *FileUpload {
				return &FileUpload{
					Reader:      strings.NewReader("hello world"),
					Name:        "รายงาน ประจำปี.pdf",
					ContentType: "application/pdf",
					Size:        11,
				}
			},
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("Create", ctx, mock.Anything).
					Return(&model.Document{ID: "doc-1"}, nil)
				mStore.On("Put", ctx, mock.MatchedBy(func(key string) bool {
					return strings.HasPrefix(key, "documents/doc-1/") && strings.HasSuffix(key, ".pdf")
				}), mock.Anything, mock.MatchedBy(func(opt storage.PutObjectOptions) bool {
					return opt.Size == 11 && opt.ContentType == "application/pdf"
				})).Return(storage.ObjectInfo{}, nil)
				mStore.On("PublicURL", mock.AnythingOfType("string")).
					Return("https://store.example/documents/doc-1/1.pdf")
				mRepo.On("SetFile", ctx, "doc-1", mock.MatchedBy(func(fm repository.FileMeta) bool {
					return fm.FileName == "รายงาน ประจำปี.pdf" &&
						fm.FileURL != "" &&
						strings.HasPrefix(fm.FilePath, "documents/doc-1/")
				})).Return(nil)
			},
			check: func(t *testing.T, doc *model.Document) {
				assert.True(t, doc.HasFile())
				assert.Equal(t, "รายงาน ประจำปี.pdf", doc.FileName)
				assert.Equal(t, "https://store.example/documents/doc-1/1.pdf", doc.FileURL)
			},
		},
		{
			name:       "validation: empty complainant",
			input:      DocumentInput{Subject: "S", Source: "HR", ReceivedDate: time.Now()},
			file:       func() *FileUpload { return nil },
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository) {},
			wantErr:    ErrValidation,
		},
		{
			name:       "validation: zero received date",
			input:      DocumentInput{ComplainantName: "A", Subject: "S", Source: "HR"},
			file:       func() *FileUpload { return nil },
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository) {},
			wantErr:    ErrValidation,
		},
		{
			name:  "blob upload fails: record rolled back",
			input: validInput(),
			file: func() *FileUpload {
				return &FileUpload{Reader: strings.NewReader("x"), Name: "a.txt", Size: 1}
			},
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("Create", ctx, mock.Anything).
					Return(&model.Document{ID: "doc-1"}, nil)
				mStore.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).
					Return(storage.ObjectInfo{}, errors.New("storage fail"))
				mRepo.On("Delete", ctx, "doc-1").Return(nil)
			},
			wantErrMsg: "upload to storage: storage fail",
		},
		{
			name:  "patch fails: blob and record rolled back",
			input: validInput(),
			file: func() *FileUpload {
				return &FileUpload{Reader: strings.NewReader("x"), Name: "a.txt", Size: 1}
			},
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("Create", ctx, mock.Anything).
					Return(&model.Document{ID: "doc-1"}, nil)
				mStore.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).
					Return(storage.ObjectInfo{}, nil)
				mStore.On("PublicURL", mock.AnythingOfType("string")).Return("https://store.example/x")
				mRepo.On("SetFile", ctx, "doc-1", mock.Anything).
					Return(errors.New("db fail"))
				mStore.On("Delete", ctx, mock.MatchedBy(func(key string) bool {
					return strings.HasPrefix(key, "documents/doc-1/")
				})).Return(nil)
				mRepo.On("Delete", ctx, "doc-1").Return(nil)
			},
			wantErrMsg: "attach file metadata: db fail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStore := new(storeMocks.MockStorage)
			mRepo := new(repoMocks.MockDocumentRepository)
			svc := NewDocumentService(mStore, mRepo, nil)

			tt.setupMocks(mStore, mRepo)

			doc, err := svc.Create(ctx, tt.input, tt.file())

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else if tt.wantErrMsg != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrMsg)
			} else {
				assert.NoError(t, err)
				require.NotNil(t, doc)
				if tt.check != nil {
					tt.check(t, doc)
				}
			}

			mStore.AssertExpectations(t)
			mRepo.AssertExpectations(t)
		})
	}
}

func TestDocumentService_List(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	snapshot := []model.Document{
		{ID: "1", ComplainantName: "Alice", Subject: "Printer", Source: "HR", ReceivedDate: now},
		{ID: "2", ComplainantName: "Bob", Subject: "Delivery", Source: "IT", ReceivedDate: now},
	}

	t.Run("no filters returns whole snapshot", func(t *testing.T) {
		mRepo := new(repoMocks.MockDocumentRepository)
		mRepo.On("List", ctx).Return(snapshot, nil)
		svc := NewDocumentService(nil, mRepo, nil)

		res, err := svc.List(ctx, ListQuery{})

		assert.NoError(t, err)
		assert.Len(t, res.Items, 2)
		assert.Equal(t, 2, res.Total)
	})

	t.Run("filters compose, total counts snapshot", func(t *testing.T) {
		mRepo := new(repoMocks.MockDocumentRepository)
		mRepo.On("List", ctx).Return(snapshot, nil)
		svc := NewDocumentService(nil, mRepo, nil)

		res, err := svc.List(ctx, ListQuery{Search: "printer", Source: "HR"})

		assert.NoError(t, err)
		assert.Len(t, res.Items, 1)
		assert.Equal(t, "1", res.Items[0].ID)
		assert.Equal(t, 2, res.Total)
	})

	t.Run("repository error", func(t *testing.T) {
		mRepo := new(repoMocks.MockDocumentRepository)
		mRepo.On("List", ctx).Return(nil, errors.New("db fail"))
		svc := NewDocumentService(nil, mRepo, nil)

		_, err := svc.List(ctx, ListQuery{})
		assert.Error(t, err)
	})
}

func TestDocumentService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path", func(t *testing.T) {
		mRepo := new(repoMocks.MockDocumentRepository)
		mRepo.On("FindByID", ctx, "doc-1").Return(&model.Document{ID: "doc-1"}, nil)
		svc := NewDocumentService(nil, mRepo, nil)

		doc, err := svc.Get(ctx, "doc-1")
		assert.NoError(t, err)
		assert.Equal(t, "doc-1", doc.ID)
	})

	t.Run("empty id", func(t *testing.T) {
		svc := NewDocumentService(nil, new(repoMocks.MockDocumentRepository), nil)
		_, err := svc.Get(ctx, "")
		assert.ErrorIs(t, err, ErrIDRequired)
	})

	t.Run("not found", func(t *testing.T) {
		mRepo := new(repoMocks.MockDocumentRepository)
		mRepo.On("FindByID", ctx, "missing").Return(nil, repository.ErrNotFound)
		svc := NewDocumentService(nil, mRepo, nil)

		_, err := svc.Get(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDocumentService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("overwrites metadata", func(t *testing.T) {
		mRepo := new(repoMocks.MockDocumentRepository)
		mRepo.On("Update", ctx, "doc-1", mock.Anything).Return(nil)
		svc := NewDocumentService(nil, mRepo, nil)

		assert.NoError(t, svc.Update(ctx, "doc-1", validInput()))
		mRepo.AssertExpectations(t)
	})

	t.Run("validation rejected before repository call", func(t *testing.T) {
		mRepo := new(repoMocks.MockDocumentRepository)
		svc := NewDocumentService(nil, mRepo, nil)

		err := svc.Update(ctx, "doc-1", DocumentInput{})
		assert.ErrorIs(t, err, ErrValidation)
		mRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("not found", func(t *testing.T) {
		mRepo := new(repoMocks.MockDocumentRepository)
		mRepo.On("Update", ctx, "missing", mock.Anything).Return(repository.ErrNotFound)
		svc := NewDocumentService(nil, mRepo, nil)

		assert.ErrorIs(t, svc.Update(ctx, "missing", validInput()), ErrNotFound)
	})
}

func TestDocumentService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("blob deleted before record", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockDocumentRepository)
		svc := NewDocumentService(mStore, mRepo, nil)

		mRepo.On("FindByID", ctx, "doc-1").Return(&model.Document{
			ID:       "doc-1",
			FileName: "scan.pdf",
			FileURL:  "https://store.example/scan.pdf",
			FilePath: "documents/doc-1/1.pdf",
		}, nil)
		mStore.On("Delete", ctx, "documents/doc-1/1.pdf").Return(nil)
		mRepo.On("Delete", ctx, "doc-1").Return(nil)

		assert.NoError(t, svc.Delete(ctx, "doc-1"))
		mStore.AssertExpectations(t)
		mRepo.AssertExpectations(t)
	})

	t.Run("record still deleted when blob delete fails", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockDocumentRepository)
		svc := NewDocumentService(mStore, mRepo, nil)

		mRepo.On("FindByID", ctx, "doc-1").Return(&model.Document{
			ID:       "doc-1",
			FileName: "scan.pdf",
			FileURL:  "https://store.example/scan.pdf",
			FilePath: "documents/doc-1/1.pdf",
		}, nil)
		mStore.On("Delete", ctx, "documents/doc-1/1.pdf").Return(errors.New("storage fail"))
		mRepo.On("Delete", ctx, "doc-1").Return(nil)

		assert.NoError(t, svc.Delete(ctx, "doc-1"))
		mRepo.AssertExpectations(t)
	})

	t.Run("no blob: storage untouched", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockDocumentRepository)
		svc := NewDocumentService(mStore, mRepo, nil)

		mRepo.On("FindByID", ctx, "doc-1").Return(&model.Document{ID: "doc-1"}, nil)
		mRepo.On("Delete", ctx, "doc-1").Return(nil)

		assert.NoError(t, svc.Delete(ctx, "doc-1"))
		mStore.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("not found", func(t *testing.T) {
		mRepo := new(repoMocks.MockDocumentRepository)
		mRepo.On("FindByID", ctx, "missing").Return(nil, repository.ErrNotFound)
		svc := NewDocumentService(nil, mRepo, nil)

		assert.ErrorIs(t, svc.Delete(ctx, "missing"), ErrNotFound)
	})
}

func TestDocumentService_Sources(t *testing.T) {
	ctx := context.Background()
	mRepo := new(repoMocks.MockDocumentRepository)
	mRepo.On("List", ctx).Return([]model.Document{
		{ID: "1", Source: "HR"},
		{ID: "2", Source: "HR"},
		{ID: "3", Source: "IT"},
	}, nil)
	svc := NewDocumentService(nil, mRepo, nil)

	sources, err := svc.Sources(ctx)

	assert.NoError(t, err)
	assert.Equal(t, []string{"all", "HR", "IT"}, sources)
}

func TestDocumentService_DownloadURL(t *testing.T) {
	ctx := context.Background()

	t.Run("presigns the attachment", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockDocumentRepository)
		svc := NewDocumentService(mStore, mRepo, nil)

		mRepo.On("FindByID", ctx, "doc-1").Return(&model.Document{
			ID:       "doc-1",
			FileName: "scan.pdf",
			FileURL:  "https://store.example/scan.pdf",
			FilePath: "documents/doc-1/1.pdf",
		}, nil)
		mStore.On("PresignGet", ctx, "documents/doc-1/1.pdf", 15*time.Minute).
			Return("https://store.example/presigned", nil)

		u, err := svc.DownloadURL(ctx, "doc-1", 15*time.Minute)
		assert.NoError(t, err)
		assert.Equal(t, "https://store.example/presigned", u)
	})

	t.Run("document without attachment", func(t *testing.T) {
		mRepo := new(repoMocks.MockDocumentRepository)
		mRepo.On("FindByID", ctx, "doc-1").Return(&model.Document{ID: "doc-1"}, nil)
		svc := NewDocumentService(new(storeMocks.MockStorage), mRepo, nil)

		_, err := svc.DownloadURL(ctx, "doc-1", 15*time.Minute)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDocumentService_Stats(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

	mRepo := new(repoMocks.MockDocumentRepository)
	mRepo.On("List", ctx).Return([]model.Document{
		{ID: "1", Source: "HR", ReceivedDate: time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)},
		{ID: "2", Source: "HR", ReceivedDate: time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)},
		{ID: "3", Source: "IT", ReceivedDate: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), FilePath: "documents/3/1.pdf", FileName: "f", FileURL: "u"},
	}, nil)
	svc := NewDocumentService(nil, mRepo, nil)

	sum, err := svc.Stats(ctx, now)

	assert.NoError(t, err)
	assert.Equal(t, 3, sum.Total)
	assert.Equal(t, 2, sum.ThisMonth)
	assert.Equal(t, 1, sum.WithFiles)
	assert.Equal(t, 2, sum.DistinctSources)
}

func TestAttachmentKey(t *testing.T) {
	now := time.UnixMilli(1709287200000)

	key := attachmentKey("doc-1", "Annual Report (final).PDF", now)
	assert.Equal(t, "documents/doc-1/1709287200000.pdf", key)

	// No extension stays extension-less rather than inventing one.
	key = attachmentKey("doc-1", "README", now)
	assert.Equal(t, "documents/doc-1/1709287200000", key)
}
