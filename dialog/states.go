package dialog

import "github.com/m3rciful/wishbot/core/telegram/state"

// Dialog states. One linear flow is active per user at a time; every state
// accepts the cancel label and resets to idle.
const (
	stateAddWishName        state.State = "add_wish_name"
	stateAddWishPrice       state.State = "add_wish_price"
	stateAddWishDescription state.State = "add_wish_description"
	stateAddWishPhoto       state.State = "add_wish_photo"
	stateAddWishLink        state.State = "add_wish_link"
	stateAddWishConfirm     state.State = "add_wish_confirm"

	stateDeleteWish  state.State = "delete_wish"
	stateViewOwnItem state.State = "view_own_item"

	stateSendContact    state.State = "send_friend_contact"
	stateDeleteFriend   state.State = "delete_friend"
	stateAcceptRequest  state.State = "accept_request"
	stateRejectRequest  state.State = "reject_request"
	stateChooseFriend   state.State = "choose_friend_wishlist"
	stateFriendWishlist state.State = "friend_wishlist"
	stateViewFriendItem state.State = "view_friend_item"
)

// Session temp-data keys.
const (
	tempDraft  = "wish_draft"
	tempWishes = "wish_snapshot"
	tempUsers  = "user_snapshot"
)

// wishDraft accumulates add-wish flow fields. Optional fields stay nil when
// the user picks the skip keyword.
type wishDraft struct {
	Name        string
	Price       *int64
	Description *string
	PhotoID     *string
	URL         *string
}
