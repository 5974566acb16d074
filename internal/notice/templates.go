package notice

// Default notice templates. The substitution variable names are a contract
// with the templating collaborator and with downstream translations; they
// must not be renamed.

// disabledTemplate warns a member that delivery has been disabled.
// Variables: listname, noticesleft, confirmurl, optionsurl, password,
// owneraddr.
const disabledTemplate = `Your membership in the mailing list {{ listname }} has been disabled
due to excessive bounces. You will not get any more messages from this
list until you re-enable your membership. You will receive
{{ noticesleft }} more reminders like this before your membership in the
list is deleted.

To re-enable your membership, you can simply respond to this message
(leaving the Subject: line intact), or visit the confirmation page:

    {{ confirmurl }}

You can also visit your membership page:

    {{ optionsurl }}

On your membership page, you can change various delivery options such
as your email address and whether you get digests or not. As a
reminder, your membership password is

    {{ password }}

If you have any questions or problems, you can contact the list owner
at

    {{ owneraddr }}
`

// adminBounceTemplate notifies the list owner about an automatic
// disposition. Variables: listname, addr, did, owneraddr.
const adminBounceTemplate = `This is a mailing list bounce action notice:

    List:       {{ listname }}
    Member:     {{ addr }}
    Action:     Subscription {{ did }}.
    Reason:     Excessive or fatal bounces.

Questions? Contact the mailing list site administrator at
{{ owneraddr }}.
`

// senderBounceDefault is the body used when no failure detail is
// available.
const senderBounceDefault = `[No bounce details are available]`

// attachmentDivider separates a notice body from the attached original
// message.
const attachmentDivider = "\n---------- Original message ----------\n"
