package store

import "fmt"

const (
	userPrefix = "user:"
	tagPrefix  = "tag:"
	memoPrefix = "memo:"

	userEmailIdxPrefix = "idx:users:email:"
	tagOwnerIdxPrefix  = "idx:tags:owner:"
	tagNameIdxPrefix   = "idx:tags:name:"
	memoOwnerIdxPrefix = "idx:memos:owner:"
	memoTagIdxPrefix   = "idx:memos:tag:"
)

func userKey(id string) []byte {
	return []byte(userPrefix + id)
}

func userEmailIdxKey(email string) []byte {
	return []byte(userEmailIdxPrefix + email)
}

func tagKey(id string) []byte {
	return []byte(tagPrefix + id)
}

func tagOwnerIdxKey(ownerID, tagID string) []byte {
	return []byte(fmt.Sprintf("%s%s:%s", tagOwnerIdxPrefix, ownerID, tagID))
}

func tagOwnerIdxScanPrefix(ownerID string) string {
	return tagOwnerIdxPrefix + ownerID + ":"
}

func tagNameIdxKey(ownerID, name string) []byte {
	return []byte(fmt.Sprintf("%s%s:%s", tagNameIdxPrefix, ownerID, name))
}

func memoKey(id string) []byte {
	return []byte(memoPrefix + id)
}

func memoOwnerIdxKey(ownerID, memoID string) []byte {
	return []byte(fmt.Sprintf("%s%s:%s", memoOwnerIdxPrefix, ownerID, memoID))
}

func memoOwnerIdxScanPrefix(ownerID string) string {
	return memoOwnerIdxPrefix + ownerID + ":"
}

func memoTagIdxKey(tagID, memoID string) []byte {
	return []byte(fmt.Sprintf("%s%s:%s", memoTagIdxPrefix, tagID, memoID))
}

func memoTagIdxScanPrefix(tagID string) string {
	return memoTagIdxPrefix + tagID + ":"
}
